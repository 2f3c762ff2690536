package cmd

import (
	"github.com/aleph-zero/abacus/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a batch of computations",
	Long:  "Send a file of JSON compute requests, one per line, to a session on an abacus server",
	Run: func(cmd *cobra.Command, args []string) {
		config := client.NewBatchConfig(
			client.WithClientConfig(clientConfig()),
			client.WithSession(viper.GetString("client.batch.session")),
			client.WithFilename(viper.GetString("client.batch.file")),
			client.WithBatchSize(viper.GetInt("client.batch.size")))
		client.BootstrapBatch(config)
	},
}

func init() {
	clientCmd.AddCommand(batchCmd)
	batchCmd.Flags().String("client.batch.file", "", "File of compute requests")
	batchCmd.Flags().String("client.batch.session", "", "Existing session to apply the batch to")
	batchCmd.Flags().Int("client.batch.size", 500, "Requests sent per batch")

	viper.BindPFlag("client.batch.file", batchCmd.Flags().Lookup("client.batch.file"))
	viper.BindPFlag("client.batch.session", batchCmd.Flags().Lookup("client.batch.session"))
	viper.BindPFlag("client.batch.size", batchCmd.Flags().Lookup("client.batch.size"))
}
