// Command termmatch maps free-text diagnosis mentions to codes using a
// JSON term dictionary. Text comes from positional arguments or a file,
// one mention per line.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/idea4rc/diagnosis-search/termmatch"
)

func main() {
	app := &cli.App{
		Name:      "termmatch",
		Usage:     "match diagnosis mentions to codes using a term dictionary",
		ArgsUsage: "[text...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dict",
				Aliases:  []string{"d"},
				Usage:    "path to the JSON term dictionary",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "minimum similarity score (0-100)",
				Value:   80,
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "read mentions from a file, one per line ('-' for stdin)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	matcher, err := termmatch.LoadDictionary(c.String("dict"))
	if err != nil {
		return err
	}

	if matcher.Size() == 0 {
		return fmt.Errorf("dictionary contains no usable entries")
	}

	mentions, err := collectMentions(c)
	if err != nil {
		return err
	}

	if len(mentions) == 0 {
		return fmt.Errorf("no text to match, pass arguments or --file")
	}

	threshold := c.Int("threshold")
	for _, mention := range mentions {
		codes := matcher.Match(mention, threshold)
		if len(codes) == 0 {
			fmt.Printf("%s\t-\n", mention)
			continue
		}
		fmt.Printf("%s\t%s\n", mention, strings.Join(codes, ","))
	}

	return nil
}

// collectMentions gathers input lines from --file or the argument list
func collectMentions(c *cli.Context) ([]string, error) {
	if path := c.String("file"); path != "" {
		var reader *bufio.Scanner
		if path == "-" {
			reader = bufio.NewScanner(os.Stdin)
		} else {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("failed to open input file: %w", err)
			}
			defer f.Close()
			reader = bufio.NewScanner(f)
		}

		var mentions []string
		for reader.Scan() {
			line := strings.TrimSpace(reader.Text())
			if line != "" {
				mentions = append(mentions, line)
			}
		}
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return mentions, nil
	}

	if c.Args().Len() == 0 {
		return nil, nil
	}

	// All positional args form one mention, quoting is optional
	return []string{strings.Join(c.Args().Slice(), " ")}, nil
}
