package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ozen/internal/config"
	"ozen/internal/deps"
	"ozen/internal/language"
	"ozen/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "status",
		Short:       "Show configuration, dependency, and sidecar status",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			cfg, configLine := statusConfig(ctx, colorize)

			lines := renderSectionHeader("Configuration", colorize)
			lines = append(lines, configLine)
			lines = append(lines, renderStatusLine("Mode", statusInfo, cfg.Pipeline.Mode, colorize))
			if cfg.NeedsTranscription() {
				lines = append(lines, renderStatusLine("Language", statusInfo, language.DisplayName(cfg.Pipeline.Language), colorize))
			}
			lines = append(lines, renderStatusLine("Segmentation", statusInfo, backendSummary(cfg.NeedsSegmentation(), cfg.Segmentation.Backend), colorize))
			lines = append(lines, renderStatusLine("Transcription", statusInfo, backendSummary(cfg.NeedsTranscription(), cfg.Transcription.Backend), colorize))
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			fmt.Fprintln(out)

			statuses := preflight.CheckSystemDeps(cfg)
			fmt.Fprintln(out, strings.Join(renderSectionHeader("Dependencies", colorize), "\n"))
			fmt.Fprintln(out, dependencyTable(statuses))
			if line := missingDependencyLine(statuses, colorize); line != "" {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, strings.Join(renderSectionHeader("Checks", colorize), "\n"))
			for _, line := range checkLines(preflight.RunAll(cmd.Context(), cfg), colorize) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

// statusConfig loads the config for display. Invalid configs are still
// reported with their normalized values so the remaining checks can run.
func statusConfig(ctx *commandContext, colorize bool) (*config.Config, string) {
	cfg, err := ctx.readConfig()
	if err != nil {
		defaults := config.Default()
		return &defaults, renderStatusLine("Config", statusError, err.Error(), colorize)
	}
	if err := cfg.Finalize(); err != nil {
		return cfg, renderStatusLine("Config", statusError, configError(err).Error(), colorize)
	}
	if !ctx.configSeen {
		return cfg, renderStatusLine("Config", statusWarn, fmt.Sprintf("%s not found; using defaults", ctx.configPath), colorize)
	}
	return cfg, renderStatusLine("Config", statusOK, ctx.configPath, colorize)
}

func backendSummary(enabled bool, backend string) string {
	if !enabled {
		return "not used in this mode"
	}
	return backend
}

func dependencyTable(statuses []deps.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, dep := range statuses {
		state := "ready"
		detail := dep.Description
		if !dep.Available {
			state = "missing"
			if dep.Optional {
				state = "optional"
			}
			if strings.TrimSpace(dep.Detail) != "" {
				detail = dep.Detail
			}
		}
		rows = append(rows, []string{dep.Name, dep.Command, state, detail})
	}
	return renderTable([]string{"Name", "Command", "Status", "Detail"}, rows, nil)
}

func missingDependencyLine(statuses []deps.Status, colorize bool) string {
	missing := deps.Missing(statuses)
	if len(missing) == 0 {
		return ""
	}
	names := make([]string, 0, len(missing))
	for _, dep := range missing {
		names = append(names, dep.Name)
	}
	return renderStatusLine("Missing dependencies", statusError, strings.Join(names, ", ")+" (install them and make sure they are on PATH)", colorize)
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}
