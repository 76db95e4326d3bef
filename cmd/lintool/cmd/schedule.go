package cmd

import (
	"fmt"
	"log"

	"github.com/roffe/golin/pkg/bar"
	"github.com/roffe/golin/pkg/mqttpub"
	"github.com/roffe/golin/pkg/schedule"
	"github.com/spf13/cobra"
)

const (
	flagCycles  = "cycles"
	flagRetries = "retries"
	flagVerbose = "verbose"
	flagMQTT    = "mqtt"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <entry>...",
	Short: "run a schedule table",
	Long: `Run a schedule table, one frame per entry:

  req:<id>[:<hexdata>][@<delay>]   master request, e.g. req:0x10:0102@10ms
  resp:<id>:<n>[@<delay>]          slave response with n data bytes, e.g. resp:0x20:2@10ms`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := schedule.ParseEntries(args)
		if err != nil {
			return err
		}
		version, err := getVersion(cmd)
		if err != nil {
			return err
		}
		for i := range entries {
			entries[i].Version = version
		}
		cycles, err := cmd.Flags().GetInt(flagCycles)
		if err != nil {
			return err
		}
		retries, err := cmd.Flags().GetInt(flagRetries)
		if err != nil {
			return err
		}
		verbose, err := cmd.Flags().GetBool(flagVerbose)
		if err != nil {
			return err
		}

		brokerURL, err := cmd.Flags().GetString(flagMQTT)
		if err != nil {
			return err
		}

		m, err := initMaster(cmd)
		if err != nil {
			return err
		}
		defer m.Close()

		var pub *mqttpub.Publisher
		if brokerURL != "" {
			if pub, err = mqttpub.New(brokerURL, m.Name()); err != nil {
				return err
			}
			if err := pub.Connect(); err != nil {
				return err
			}
			defer pub.Close()
		}

		total := -1
		if cycles > 0 {
			total = cycles * len(entries)
		}
		pb := bar.New(total, "running schedule")

		failed := 0
		r := &schedule.Runner{
			Master:  m,
			Entries: entries,
			Retries: retries,
			OnResult: func(res schedule.Result) {
				pb.Add(1)
				if pub != nil {
					if err := pub.Publish(res); err != nil {
						log.Println(err)
					}
				}
				if res.Err != nil {
					failed++
					log.Printf("%s: %v (%d attempts)", res.Entry, res.Err, res.Attempts)
					return
				}
				if verbose {
					log.Println(res.Frame.ColorString())
				}
			},
			OnRetry: func(e schedule.Entry, attempt uint, err error) {
				if verbose {
					log.Printf("%s: retry #%d %v", e, attempt, err)
				}
			},
		}
		err = r.Run(cmd.Context(), cycles)
		pb.Finish()
		fmt.Println()

		stats := m.Stats()
		log.Println(stats.String())
		if err != nil && cmd.Context().Err() == nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d frames failed", failed)
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().Int(flagCycles, 1, "number of table cycles, 0 = until interrupted")
	scheduleCmd.Flags().Int(flagRetries, 0, "retries per failed frame")
	scheduleCmd.Flags().BoolP(flagVerbose, "v", false, "print every frame")
	scheduleCmd.Flags().String(flagMQTT, "", "publish results to broker, e.g. mqtt://localhost:1883/prefix")
	rootCmd.AddCommand(scheduleCmd)
}
