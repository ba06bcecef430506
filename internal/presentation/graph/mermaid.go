package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/rules"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	CurrentState domain.State
}

type edge struct {
	from, to domain.State
	static   bool
}

// GenerateMermaid produces a Mermaid flowchart of the dialogue.
// It applies semantic styling:
// - Initial: ((Circle))
// - Topic state (awaiting an answer): [/Parallelogram/]
// Transition rules draw solid edges labelled with their patterns; static replies draw
// a dotted self-loop on their state; every topic state draws a dotted fallback edge
// back to initial.
func GenerateMermaid(states []rules.StateSummary, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, st := range states {
		safeID := sanitizeMermaidID(st.Name)
		opener, closer := "[/", "/]"
		if st.Name == domain.StateInitial {
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, st.Name, closer))
	}

	for _, st := range states {
		// Group patterns per edge, keeping first-seen order.
		var order []edge
		labels := make(map[edge][]string)
		for _, r := range st.Rules {
			e := edge{from: st.Name, to: r.Next, static: r.Kind == rules.OutcomeStatic.String()}
			if e.static {
				e.to = st.Name
			}
			if _, ok := labels[e]; !ok {
				order = append(order, e)
			}
			labels[e] = append(labels[e], escapeLabel(r.Pattern))
		}

		for _, e := range order {
			label := strings.Join(labels[e], "<br/>")
			from, to := sanitizeMermaidID(e.from), sanitizeMermaidID(e.to)
			if e.static {
				sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", from, label, to))
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", from, label, to))
		}

		if st.Name != domain.StateInitial {
			sb.WriteString(fmt.Sprintf("    %s -. \"fallback\" .-> %s\n", sanitizeMermaidID(st.Name), sanitizeMermaidID(domain.StateInitial)))
		}
	}

	if overlay != nil && overlay.CurrentState != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentState)))
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

func sanitizeMermaidID(state domain.State) string {
	s := string(state)
	for _, c := range []string{".", "-", "/", "\\", " "} {
		s = strings.ReplaceAll(s, c, "_")
	}
	return s
}
