package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/output"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the profile extracted from the configuration and resume text",
	PreRun: func(cmd *cobra.Command, _ []string) {
		bindFlags(cmd, map[string]string{
			"profile.skills":           "skills",
			"profile.experience-years": "experience",
			"profile.file":             "profile-file",
		})
	},
	Run: func(_ *cobra.Command, _ []string) {
		logger := newLogger()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		profile, err := buildProfile(config.Profile)
		if err != nil {
			logger.Fatal("building the profile", zap.Error(err))
		}

		// Raw text can be long and is already in the resume file.
		profile.RawText = ""
		if err := output.WriteJSON(os.Stdout, profile); err != nil {
			logger.Fatal("writing the profile", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().StringSlice("skills", nil, "profile skills, merged with the skills found in the profile file")
	profileCmd.Flags().Int("experience", 0, "profile years of experience")
	profileCmd.Flags().StringP("profile-file", "p", "", "plain text resume used as the profile")
}
