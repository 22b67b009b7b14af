// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/multiconsole/corefab/program"
)

type searchMode int

const (
	searchFuzzy searchMode = iota
	searchExact
	searchRegex
)

// searchHit is one name match against the metadata index: a program can
// carry several declared names (§3 ProgramInfo.Names), any of which may
// match independently.
type searchHit struct {
	Id   program.ProgramId
	Name string
}

func newSearchCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "search",
		Short: "look up programs in the metadata index by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{fmt.Errorf("search takes a fuzzy, exact, or regex subcommand, or no arguments for the interactive prompt")}
			}
			return runSearchRepl()
		},
	}
	root.AddCommand(newSearchFuzzyCmd(), newSearchExactCmd(), newSearchRegexCmd())
	return root
}

func newSearchFuzzyCmd() *cobra.Command {
	var similarity float64
	cmd := &cobra.Command{
		Use:   "fuzzy <query>",
		Short: "approximate name match, ranked by similarity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("search fuzzy requires exactly one query")}
			}
			return printSearch(searchFuzzy, args[0], similarity)
		},
	}
	cmd.Flags().Float64Var(&similarity, "similarity", 0.6, "minimum match ratio, 0-1")
	return cmd
}

func newSearchExactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exact <query>",
		Short: "case-insensitive exact name match",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("search exact requires exactly one query")}
			}
			return printSearch(searchExact, args[0], 0)
		},
	}
}

func newSearchRegexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regex <pattern>",
		Short: "regular-expression name match",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("search regex requires exactly one pattern")}
			}
			return printSearch(searchRegex, args[0], 0)
		},
	}
}

// runQuery evaluates query against every name of every program in the
// store's metadata index (program.Store.ForEach), per mode.
func runQuery(mode searchMode, query string, similarity float64) ([]searchHit, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var re *regexp.Regexp
	if mode == searchRegex {
		re, err = regexp.Compile(query)
		if err != nil {
			return nil, &usageError{fmt.Errorf("invalid regular expression: %s", err)}
		}
	}

	var hits []searchHit
	err = store.ForEach(func(id program.ProgramId, info program.ProgramInfo) error {
		for _, name := range info.Names {
			switch mode {
			case searchExact:
				if strings.EqualFold(name, query) {
					hits = append(hits, searchHit{id, name})
				}
			case searchRegex:
				if re.MatchString(name) {
					hits = append(hits, searchHit{id, name})
				}
			default: // searchFuzzy
				if nameSimilarity(name, query) >= similarity {
					hits = append(hits, searchHit{id, name})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func printSearch(mode searchMode, query string, similarity float64) error {
	hits, err := runQuery(mode, query, similarity)
	if err != nil {
		return err
	}
	printHits(hits)
	return nil
}

func printHits(hits []searchHit) {
	if len(hits) == 0 {
		fmt.Println("corefabtool: no matches")
		return
	}
	for _, h := range hits {
		fmt.Printf("%s/%s\t%s\n", h.Id.MachineId, h.Id.Name, h.Name)
	}
}
