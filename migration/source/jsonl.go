// Package source reads the staging dumps produced by the upstream
// extractor: one JSON-lines file per source table. The proprietary
// source format itself is the extractor's problem, not this tool's.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-faster/errors"

	"github.com/parishsource/shepherd/migration/domain"
)

// DirScanner exposes every <Table>.jsonl file in a directory as a
// scannable table.
type DirScanner struct {
	paths map[string]string
}

func Open(dir string) (*DirScanner, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "open source directory")
	}
	paths := map[string]string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		table := strings.TrimSuffix(e.Name(), ".jsonl")
		paths[table] = filepath.Join(dir, e.Name())
	}
	return &DirScanner{paths: paths}, nil
}

func (s *DirScanner) Tables() []string {
	tables := make([]string, 0, len(s.paths))
	for t := range s.paths {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

func (s *DirScanner) RowCount(ctx context.Context, table string) (int, error) {
	path, ok := s.paths[table]
	if !ok {
		return 0, errors.Wrapf(domain.ErrMissingDependency, "table %s", table)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		if len(strings.TrimSpace(scanner.Text())) > 0 {
			count++
		}
	}
	return count, scanner.Err()
}

func (s *DirScanner) Scan(ctx context.Context, table string) (domain.RowIter, error) {
	path, ok := s.paths[table]
	if !ok {
		return nil, errors.Wrapf(domain.ErrMissingDependency, "table %s", table)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	return &jsonlIter{file: f, scanner: scanner}, nil
}

type jsonlIter struct {
	file    *os.File
	scanner *bufio.Scanner
	row     domain.Row
	err     error
}

func (it *jsonlIter) Next() bool {
	if it.err != nil {
		return false
	}
	for it.scanner.Scan() {
		line := strings.TrimSpace(it.scanner.Text())
		if line == "" {
			continue
		}
		var row domain.Row
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			it.err = errors.Wrap(err, "decode source row")
			return false
		}
		it.row = row
		return true
	}
	it.err = it.scanner.Err()
	return false
}

func (it *jsonlIter) Row() domain.Row { return it.row }
func (it *jsonlIter) Err() error      { return it.err }
func (it *jsonlIter) Close() error    { return it.file.Close() }
