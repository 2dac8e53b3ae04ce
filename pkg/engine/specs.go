package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-go-golems/devserv/pkg/state"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// ServiceName derives the short ledger name of a planned service from its role.
func ServiceName(svc PlannedService) string {
	desc := strings.ToLower(svc.Description)
	switch {
	case strings.Contains(desc, "ngrok") || strings.Contains(desc, "tunnel"):
		return "ngrok"
	case strings.Contains(desc, "stripe"):
		return "stripe"
	case strings.Contains(desc, "dev server") || strings.Contains(desc, "development server"):
		return "dev"
	}
	slug := strings.Trim(nonSlug.ReplaceAllString(desc, "-"), "-")
	if slug == "" {
		return "service"
	}
	return slug
}

// ServiceSpecs maps a plan onto launchable specs rooted at projectRoot. Names are made
// unique with the terminal index, then a counter.
func ServiceSpecs(plan LaunchPlan, projectRoot string) []ServiceSpec {
	used := map[string]bool{}
	out := make([]ServiceSpec, 0, len(plan.Services))
	for _, svc := range plan.Services {
		name := ServiceName(svc)
		if used[name] && svc.Terminal > 0 {
			name = name + "-" + strconv.Itoa(svc.Terminal)
		}
		base := name
		for n := 2; used[name]; n++ {
			name = base + "-" + strconv.Itoa(n)
		}
		used[name] = true

		out = append(out, ServiceSpec{
			Name:    name,
			Command: svc.Command,
			LogPath: state.LogPath(projectRoot, name),
			Cwd:     projectRoot,
		})
	}
	return out
}
