package cmd

import (
	"github.com/kattn/djgenetics/pkg/service"
	"github.com/spf13/cobra"
)

var (
	publishName        string
	publishDescription string
	publishPublic      bool
)

var publishCmd = &cobra.Command{
	Use:   "publish <roll.json|file.mid>",
	Short: "Upload a piano roll as a MIDI pattern",
	Long: `Encode a piano roll and upload it to the pattern API at api.base_url,
authenticating with api.token.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.NewPublishService().Publish(source(cmd, args[0]), service.PublishOptions{
			Name:                 publishName,
			Description:          publishDescription,
			IsPublic:             publishPublic,
			MergeVelocityChanges: encodeOptions(cmd).MergeVelocityChanges,
		})
		return err
	},
}

func init() {
	addSourceFlags(publishCmd)
	publishCmd.Flags().StringVar(&publishName, "name", "", "Pattern name")
	publishCmd.Flags().StringVar(&publishDescription, "description", "", "Pattern description")
	publishCmd.Flags().BoolVar(&publishPublic, "public", false, "Make the pattern public")
	publishCmd.Flags().BoolVar(&mergeChanges, "merge-velocity-changes", false,
		"Keep a note sounding across velocity changes instead of restriking it")
	_ = publishCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(publishCmd)
}
