// Command genusers writes a CSV file of synthetic user records in the format
// the ingest pipeline consumes.
//
//	genusers data.csv 1000 --start-date=-1y --locale en_US --locale fr_FR
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"useringest/internal/gen"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		locales   []string
		seed      int64
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "genusers <output.csv> <count>",
		Short: "Generate a CSV file with synthetic user records",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			count, err := strconv.Atoi(args[1])
			if err != nil || count < 0 {
				return fmt.Errorf("count must be a non-negative integer, got %q", args[1])
			}

			if !force {
				ok, err := confirmOverwrite(path, cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "file creation aborted")
					return nil
				}
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()

			n, err := gen.Generate(f, gen.Options{
				Count:     count,
				Locales:   locales,
				StartDate: startDate,
				EndDate:   endDate,
				Seed:      seed,
			})
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", n, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "-5y", "earliest signup date (\"now\", an offset like \"-5y\", or YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "now", "latest signup date (same forms as --start-date)")
	cmd.Flags().StringArrayVar(&locales, "locale", []string{"en_US"}, "locale for names and mail providers (repeatable)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file without asking")

	return cmd
}

// confirmOverwrite asks before clobbering an existing file. It returns true
// when the path does not exist yet or the user answered yes.
func confirmOverwrite(path string, in io.Reader, out io.Writer) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	fmt.Fprintf(out, "the file %q already exists. overwrite it? (y/n): ", path)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}
