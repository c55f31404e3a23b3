package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"logtarget/internal/config"
	"logtarget/internal/document"
	"logtarget/internal/emergency"
)

var (
	emergencyFile    string
	emergencyVerbose bool

	emergencyCmd = &cobra.Command{
		Use:   "emergency",
		Short: "Summarise the records in the emergency file",
		RunE:  inspectEmergency,
	}
)

func init() {
	emergencyCmd.Flags().StringVar(&emergencyFile, "file", "", "emergency file (defaults to the configured one)")
	emergencyCmd.Flags().BoolVarP(&emergencyVerbose, "verbose", "v", false, "print every record")
}

func inspectEmergency(cmd *cobra.Command, args []string) error {
	path := emergencyFile
	if path == "" {
		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		resolved, err := emergency.ResolvePath(cfg.Emergency.File, cfg.Emergency.Aliases)
		if err != nil {
			return err
		}
		path = resolved
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := emergency.Scan(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	counts := map[emergency.Kind]int{}
	for i, r := range records {
		counts[r.Kind]++
		fmt.Fprintf(out, "#%d %s\n", i+1, summarize(r))
		if emergencyVerbose {
			b, err := r.Data.MarshalJSON()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", b)
		}
	}
	fmt.Fprintf(out, "%s: %d records (%d queued, %d banner)\n",
		path, len(records), counts[emergency.KindQueued], counts[emergency.KindBanner])
	return nil
}

// summarize renders one line per record: kind, flush id and the key facts
// an operator needs to find the lost documents.
func summarize(r emergency.Record) string {
	id := "-"
	if v, ok := r.Data.Get("flushId"); ok {
		id = fmt.Sprint(v)
	}
	line := fmt.Sprintf("%s flush=%s", r.Kind, id)

	if r.Kind == emergency.KindQueued {
		v, _ := r.Data.Get(emergency.KeyQueue)
		if q, ok := v.([]any); ok {
			line += fmt.Sprintf(" queued=%d", len(q))
		}
		return line
	}
	for _, key := range []string{"elasticExportError", "targetPanic"} {
		if v, ok := r.Data.Get(key); ok {
			if inner, ok := v.(*document.Document); ok {
				msg, _ := inner.Get("error")
				line += fmt.Sprintf(" %s=%q", key, fmt.Sprint(msg))
			}
		}
	}
	return line
}
