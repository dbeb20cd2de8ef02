//go:build mage

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// statRoots are the directories holding codex packages.
var statRoots = []string{"cmd", "internal", "pkg"}

type pkgLines struct {
	prod, test int
}

// Stats prints production and test line counts for every codex package.
func Stats() error {
	counts := map[string]*pkgLines{}
	for _, root := range statRoots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".go" {
				return nil
			}
			n, err := countLines(path)
			if err != nil {
				return err
			}
			pkg := filepath.ToSlash(filepath.Dir(path))
			c := counts[pkg]
			if c == nil {
				c = &pkgLines{}
				counts[pkg] = c
			}
			if strings.HasSuffix(path, "_test.go") {
				c.test += n
			} else {
				c.prod += n
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	pkgs := make([]string, 0, len(counts))
	for pkg := range counts {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "package\tprod\ttest\ttest/prod\t")
	var total pkgLines
	for _, pkg := range pkgs {
		c := counts[pkg]
		total.prod += c.prod
		total.test += c.test
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", pkg, humanize.Comma(int64(c.prod)), humanize.Comma(int64(c.test)), ratio(*c))
	}
	fmt.Fprintf(tw, "total\t%s\t%s\t%s\t\n", humanize.Comma(int64(total.prod)), humanize.Comma(int64(total.test)), ratio(total))
	return tw.Flush()
}

func ratio(c pkgLines) string {
	if c.prod == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(c.test)/float64(c.prod))
}

// countLines counts non-blank lines in path.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	return n, scanner.Err()
}
