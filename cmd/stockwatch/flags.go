package main

import (
	"flag"
)

type AppFlags struct {
	GlobalConfigFile string
	EnvFile          string
}

func ParseFlags() AppFlags {
	globalConfigFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("c", "", "Alias for -config")

	envFile := flag.String("env-file", ".env", "Path to a dotenv file loaded before reading the environment. A missing file is ignored.")

	flag.Parse()

	flags := AppFlags{EnvFile: *envFile}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	return flags
}
