package corpus

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/graphsets/pubmed-temporal/pkg/types"
)

const (
	nodeTablePath = "pubmed-diabetes/data/Pubmed-Diabetes.NODE.paper.tab"
	edgeTablePath = "pubmed-diabetes/data/Pubmed-Diabetes.DIRECTED.cites.tab"

	// Both tables open with a format line and a header line.
	headerLines = 2

	paperPrefix = "paper:"
)

// ErrArchiveNotFound is returned when the source archive is missing from the
// root folder.
var ErrArchiveNotFound = errors.New("source archive not found; run the download stage first")

// Corpus is the parsed source dataset: papers in file order, the term
// vocabulary in first-appearance order, and the directed citation records.
type Corpus struct {
	Papers    []types.Paper
	Vocab     []string
	Citations []types.Citation
}

// Load parses the source archive under root.
func Load(root string) (*Corpus, error) {
	r, err := zip.OpenReader(ArchivePath(root))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, ArchivePath(root))
	}
	defer r.Close()

	c := &Corpus{}
	if err := c.readPapers(&r.Reader); err != nil {
		return nil, err
	}
	if err := c.readCitations(&r.Reader); err != nil {
		return nil, err
	}
	return c, nil
}

// readPapers parses the node table. Each data line holds the PMID, a
// label=<y> column, term=weight columns, and a trailing summary column.
// Terms enter the vocabulary in order of first appearance.
func (c *Corpus) readPapers(r *zip.Reader) error {
	f, err := r.Open(nodeTablePath)
	if err != nil {
		return fmt.Errorf("failed to open node table: %w", err)
	}
	defer f.Close()

	seen := make(map[string]struct{})

	return scanTable(f, func(fields []string) error {
		if len(fields) < 2 {
			return fmt.Errorf("malformed node line: %q", strings.Join(fields, "\t"))
		}

		label, err := splitAttr(fields[1])
		if err != nil {
			return fmt.Errorf("failed to parse label for %s: %w", fields[0], err)
		}
		y, err := strconv.Atoi(label)
		if err != nil {
			return fmt.Errorf("failed to parse label for %s: %w", fields[0], err)
		}

		paper := types.Paper{
			PMID:    fields[0],
			Label:   y,
			Weights: make(map[string]float32),
		}

		// All columns between the label and the trailing summary are
		// term weights.
		terms := fields[2:]
		if len(terms) > 0 {
			last := terms[len(terms)-1]
			if strings.HasPrefix(last, "summary=") {
				paper.Summary = strings.TrimPrefix(last, "summary=")
				terms = terms[:len(terms)-1]
			}
		}

		for _, item := range terms {
			term, value, ok := strings.Cut(item, "=")
			if !ok {
				return fmt.Errorf("malformed term column %q for %s", item, fields[0])
			}
			w, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return fmt.Errorf("failed to parse weight %q for %s: %w", item, fields[0], err)
			}
			paper.Weights[term] = float32(w)
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				c.Vocab = append(c.Vocab, term)
			}
		}

		c.Papers = append(c.Papers, paper)
		return nil
	})
}

// readCitations parses the edge table. Data lines hold the edge id, the
// citing paper, a separator column, and the cited paper.
func (c *Corpus) readCitations(r *zip.Reader) error {
	f, err := r.Open(edgeTablePath)
	if err != nil {
		return fmt.Errorf("failed to open edge table: %w", err)
	}
	defer f.Close()

	return scanTable(f, func(fields []string) error {
		if len(fields) < 4 {
			return fmt.Errorf("malformed edge line: %q", strings.Join(fields, "\t"))
		}
		c.Citations = append(c.Citations, types.Citation{
			ID:     fields[0],
			Source: strings.TrimPrefix(fields[1], paperPrefix),
			Target: strings.TrimPrefix(fields[3], paperPrefix),
		})
		return nil
	})
}

// IDs returns all PMIDs sorted numerically.
func (c *Corpus) IDs() []string {
	ids := make([]string, len(c.Papers))
	for i, p := range c.Papers {
		ids[i] = p.PMID
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.ParseInt(ids[i], 10, 64)
		b, _ := strconv.ParseInt(ids[j], 10, 64)
		return a < b
	})
	return ids
}

// Features returns the tf-idf vector for a paper over the corpus vocabulary.
// Terms absent from the paper weigh zero.
func (c *Corpus) Features(p *types.Paper) []float32 {
	x := make([]float32, len(c.Vocab))
	for i, term := range c.Vocab {
		x[i] = p.Weights[term]
	}
	return x
}

// scanTable reads a tab-separated table, skipping the header lines and
// passing the fields of each data line to fn.
func scanTable(r io.Reader, fn func(fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if line <= headerLines {
			continue
		}
		text := scanner.Text()
		if text == "" {
			continue
		}
		if err := fn(strings.Split(text, "\t")); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// splitAttr extracts the value of a "key=value" column.
func splitAttr(s string) (string, error) {
	_, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", fmt.Errorf("missing '=' in column %q", s)
	}
	return value, nil
}
