package main

import "fmt"

// Run executes the config command.
func (c *ConfigCmd) Run(deps *Dependencies) error {
	s := deps.Settings
	fmt.Fprintf(deps.Stdout, "settings file: %s\n", deps.SettingsPath)
	fmt.Fprintf(deps.Stdout, "idm_path:      %s\n", s.ExecPath)
	fmt.Fprintf(deps.Stdout, "browser:       %s\n", s.Browser)
	fmt.Fprintf(deps.Stdout, "batch_size:    %d\n", s.BatchSize)
	fmt.Fprintf(deps.Stdout, "last_url:      %s\n", s.Source)
	return nil
}
