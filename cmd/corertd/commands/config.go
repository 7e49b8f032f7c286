package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreipc/corert/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Subcommands for generating and inspecting corertd's configuration file.`,
}

var (
	configInitForce bool
	configInitPath  string
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration file",
	Long: `Write a default configuration file.

Without --path, writes to the default location
($XDG_CONFIG_HOME/corert/config.yaml). Fails if the file already exists
unless --force is given.`,
	RunE: runConfigInit,
}

var configSchemaOutput string

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON Schema",
	Long:  `Print a JSON Schema document describing the configuration file format.`,
	RunE:  runConfigSchema,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing configuration file")
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "Write the config file to this path instead of the default location")

	configSchemaCmd.Flags().StringVarP(&configSchemaOutput, "output", "o", "", "Write the schema to this file instead of stdout")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSchemaCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	var path string
	var err error

	if configInitPath != "" {
		path = configInitPath
		err = config.InitConfigToPath(path, configInitForce)
	} else {
		path, err = config.InitConfig(configInitForce)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Configuration file written to %s\n", path)
	return nil
}

func runConfigSchema(cmd *cobra.Command, args []string) error {
	schema, err := config.Schema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if configSchemaOutput == "" {
		fmt.Println(string(schema))
		return nil
	}

	if err := os.WriteFile(configSchemaOutput, schema, 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	fmt.Printf("Schema written to %s\n", configSchemaOutput)
	return nil
}
