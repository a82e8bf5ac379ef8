package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/collector"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/demo"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/engine"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/orchestrator"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/output"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/scan"
)

// collectTimeout is the maximum time for a local scan.
const collectTimeout = 2 * time.Minute

// handlers carries the catalogs the tools analyze against.
type handlers struct {
	cpus    *catalog.Catalog
	gpus    *catalog.Catalog
	now     func() time.Time
	collect func(ctx context.Context) (*model.Scan, error)
}

func newHandlers(cpus, gpus *catalog.Catalog) *handlers {
	if cpus == nil {
		cpus = catalog.DefaultCPUs()
	}
	if gpus == nil {
		gpus = catalog.DefaultGPUs()
	}
	return &handlers{
		cpus: cpus,
		gpus: gpus,
		now:  time.Now,
		collect: func(ctx context.Context) (*model.Scan, error) {
			cfg := collector.DefaultConfig()
			cfg.Quiet = true
			cfg.Timeout = collectTimeout
			return orchestrator.BuildScan(ctx, cfg)
		},
	}
}

// analyzeScan parses, validates and analyzes a scan passed as a JSON string.
func (h *handlers) analyzeScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	raw := stringArg(args, "scan", "")
	if raw == "" {
		return errResult("scan is required"), nil
	}

	s, err := scan.Parse(strings.NewReader(raw), h.now())
	if err != nil {
		var verr *scan.ValidationError
		if errors.As(err, &verr) {
			return errResult(validationMessage(verr)), nil
		}
		return errResult(fmt.Sprintf("invalid scan: %v", err)), nil
	}
	return h.report(s, stringArg(args, "format", "json"))
}

// collectScan scans the local machine and analyzes the result.
func (h *handlers) collectScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, collectTimeout)
	defer cancel()

	s, err := h.collect(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("collection failed: %v", err)), nil
	}
	if err := scan.Validate(s); err != nil {
		var verr *scan.ValidationError
		if errors.As(err, &verr) {
			return errResult("collected scan is incomplete: " + validationMessage(verr)), nil
		}
		return errResult(err.Error()), nil
	}
	return h.report(s, stringArg(getArgs(request), "format", "json"))
}

// demoReport analyzes the built-in demo scan.
func (h *handlers) demoReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.report(demo.Scan(), stringArg(getArgs(request), "format", "json"))
}

func (h *handlers) report(s *model.Scan, format string) (*mcp.CallToolResult, error) {
	r, err := engine.Analyze(s, engine.WithCatalogs(h.cpus, h.gpus))
	if err != nil {
		return errResult(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	now := h.now().UTC()
	r.AnalyzedAt = &now

	if format == "text" {
		return newTextResult(output.FormatReport(r)), nil
	}
	jsonData, err := json.Marshal(r)
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// lookupResult is the lookup_hardware response.
type lookupResult struct {
	Kind       string          `json:"kind"`
	Query      string          `json:"query"`
	Match      *catalog.Entry  `json:"match"`
	Upgrades   []catalog.Entry `json:"upgrade_candidates"`
	PriceRange string          `json:"upgrade_price_range,omitempty"`
}

// lookupHardware finds a CPU or GPU in the catalog.
func (h *handlers) lookupHardware(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	kind := strings.ToLower(stringArg(args, "kind", ""))
	name := stringArg(args, "name", "")
	if name == "" {
		return errResult("name is required"), nil
	}

	var c *catalog.Catalog
	switch kind {
	case "cpu":
		c = h.cpus
	case "gpu":
		c = h.gpus
	default:
		return errResult(fmt.Sprintf("kind must be cpu or gpu, got %q", kind)), nil
	}

	res := lookupResult{Kind: kind, Query: name, Upgrades: []catalog.Entry{}}
	e, ok := c.Lookup(name)
	if !ok {
		return newTextResult(fmt.Sprintf(
			"No %s in the catalog matches %q. Unknown parts still get generic analysis, but tier comparisons and upgrade suggestions are skipped.",
			strings.ToUpper(kind), name,
		)), nil
	}
	res.Match = &e
	if up := c.UpgradeCandidates(e, 0); len(up) > 0 {
		res.Upgrades = up
		res.PriceRange = engine.PriceRange(up)
	}

	jsonData, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// listBottlenecks returns every rule grouped by category.
func (h *handlers) listBottlenecks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := engine.Rules()
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Category < rules[j].Category
	})

	jsonData, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// explainBottleneck provides a detailed explanation for a bottleneck id.
func (h *handlers) explainBottleneck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(getArgs(request), "bottleneck_id", "")
	if id == "" {
		return errResult("bottleneck_id is required"), nil
	}

	rule, ok := engine.FindRule(id)
	if !ok {
		return newTextResult(fmt.Sprintf(
			"No bottleneck with id '%s'. Run 'list_bottlenecks' to see every id the analyzer reports.",
			id,
		)), nil
	}

	var b strings.Builder
	if desc, ok := bottleneckExplanations[rule.ID]; ok {
		b.WriteString(desc)
	} else {
		fmt.Fprintf(&b, "**%s**\n", rule.ID)
	}
	fmt.Fprintf(&b, "\n**Trigger:** %s\n", rule.Summary)
	sev := make([]string, len(rule.Severities))
	for i, s := range rule.Severities {
		sev[i] = string(s)
	}
	fmt.Fprintf(&b, "**Category:** %s. **Severity:** %s.", rule.Category, strings.Join(sev, " or "))
	return newTextResult(b.String()), nil
}

func validationMessage(verr *scan.ValidationError) string {
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + verr.Fields[k]
	}
	return "invalid scan: " + strings.Join(parts, "; ")
}

// getArgs safely extracts the arguments map from a CallToolRequest.
// Returns an empty map if Arguments is nil or not a map.
func getArgs(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// stringArg extracts a string argument with a default value.
func stringArg(args map[string]interface{}, key, defaultVal string) string {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

// newTextResult creates a successful MCP tool result with text content.
func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// errResult creates an MCP tool error result (IsError=true).
// This is returned as a tool-level error, not a transport-level JSON-RPC error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
	}
}
