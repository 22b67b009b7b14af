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
	"bufio"
	"fmt"
	"os"
	"strings"

	term "github.com/pkg/term"
)

// runSearchRepl is what `search` launches with no subcommand: each line is
// "fuzzy|exact|regex <query>", evaluated against the metadata index until
// the user quits. Grounded on the teacher's own interactive debugger
// console, which reads a line at a time and dispatches to command handlers
// (debugger/terminal).
func runSearchRepl() error {
	fmt.Println(`corefabtool search -- type "fuzzy|exact|regex <query>", or "quit"`)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("search> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		mode, query, similarity, err := parseReplLine(line)
		if err != nil {
			fmt.Println(err)
			continue
		}

		hits, err := runQuery(mode, query, similarity)
		if err != nil {
			fmt.Println(err)
			continue
		}
		printHits(hits)

		if len(hits) == 0 {
			continue
		}
		key, err := waitForKeypress("-- press any key to continue, q to quit --")
		if err != nil {
			// no controlling tty (piped input, e.g. under test): fall
			// straight back to the prompt rather than failing the REPL.
			continue
		}
		if key == 'q' {
			return nil
		}
	}
}

func parseReplLine(line string) (searchMode, string, float64, error) {
	fields := strings.SplitN(line, " ", 2)
	if len(fields) != 2 || strings.TrimSpace(fields[1]) == "" {
		return 0, "", 0, fmt.Errorf(`expected "fuzzy|exact|regex <query>"`)
	}
	query := strings.TrimSpace(fields[1])
	switch fields[0] {
	case "fuzzy":
		return searchFuzzy, query, 0.6, nil
	case "exact":
		return searchExact, query, 0, nil
	case "regex":
		return searchRegex, query, 0, nil
	default:
		return 0, "", 0, fmt.Errorf("unknown search mode %q (want fuzzy, exact, or regex)", fields[0])
	}
}

// waitForKeypress puts /dev/tty into cbreak mode just long enough to read a
// single byte, then restores it: the same raw-mode-for-one-keystroke idiom
// the teacher's debugger console uses (via its own termios wrapper,
// debugger/terminal/colorterm/easyterm) for paging prompts, backed directly
// by pkg/term here instead of a hand-rolled termios wrapper.
func waitForKeypress(prompt string) (byte, error) {
	fmt.Print(prompt)
	t, err := term.Open("/dev/tty", term.CBreakMode)
	if err != nil {
		return 0, err
	}
	defer t.Close()
	defer t.Restore()

	buf := make([]byte, 1)
	if _, err := t.Read(buf); err != nil {
		return 0, err
	}
	fmt.Println()
	return buf[0], nil
}
