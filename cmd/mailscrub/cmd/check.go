package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/mailscrub/message"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check file [file...]",
		Short: "Verify messages survive a parse and re-serialize round trip",
		Args:  cobra.MinimumNArgs(1),
		RunE:  Check,
	}

	checkQuiet bool
)

func init() {
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "suppress diffs, report file names only")

	rootCmd.AddCommand(checkCmd)
}

// Check parses each named message with no rules configured, serializes it
// again, and reports any byte difference. A difference means scrubbing that
// message would rewrite parts the rules never touched.
func Check(cmd *cobra.Command, args []string) error {
	differing := 0
	for _, path := range args {
		ok, err := checkFile(cmd, path)
		if err != nil {
			return err
		}
		if !ok {
			differing++
		}
	}

	if differing > 0 {
		return fmt.Errorf("%d of %d messages did not round trip", differing, len(args))
	}
	return nil
}

func checkFile(cmd *cobra.Command, path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	msg, err := message.Parse(bytes.NewReader(raw), message.WithUnlimitedRecursion())
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return false, fmt.Errorf("serializing %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if bytes.Equal(raw, buf.Bytes()) {
		fmt.Fprintf(out, "ok %s\n", path)
		return true, nil
	}

	fmt.Fprintf(out, "differs %s\n", path)
	if !checkQuiet {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(raw), buf.String(), true)
		fmt.Fprint(out, dmp.DiffPrettyText(diffs))
	}
	return false, nil
}
