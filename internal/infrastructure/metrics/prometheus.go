package metrics

import (
	"expvar"
	"fmt"
	"io"
	"sort"
	"strings"
)

type meta struct {
	typ, help string
	isMap     bool
	label     string
}

var metas = map[string]meta{
	"agentgraph_generations_total":             {typ: "counter", help: "Programs generated"},
	"agentgraph_workflows_total":               {typ: "counter", help: "Workflow functions emitted"},
	"agentgraph_warnings_total":                {typ: "counter", help: "Generator warnings reported"},
	"agentgraph_generation_milliseconds_total": {typ: "counter", help: "Cumulative generation time in milliseconds"},
	"agentgraph_generated_nodes_total":         {typ: "counter", help: "Nodes processed by the generator", isMap: true, label: "kind"},
	"agentgraph_generation_failures_total":     {typ: "counter", help: "Generation requests rejected", isMap: true, label: "reason"},
	"agentgraph_imports_total":                 {typ: "counter", help: "Project files imported"},
	"agentgraph_import_failures_total":         {typ: "counter", help: "Project files rejected as invalid"},
	"agentgraph_store_operations_total":        {typ: "counter", help: "Project store calls", isMap: true, label: "op"},
	"agentgraph_store_errors_total":            {typ: "counter", help: "Project store calls that failed", isMap: true, label: "op"},
}

// ContentType is the Prometheus text exposition content type.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// WritePrometheus renders every expvar variable. Known metrics carry HELP
// and TYPE lines; other integer variables are written as untyped gauges and
// everything else is skipped.
func WritePrometheus(w io.Writer) error {
	names := make([]string, 0, 64)
	expvar.Do(func(kv expvar.KeyValue) {
		names = append(names, kv.Key)
	})
	sort.Strings(names)

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	for _, name := range names {
		v := expvar.Get(name)
		m, known := metas[name]
		if !known {
			if iv, ok := v.(*expvar.Int); ok {
				printf("# TYPE %s gauge\n", name)
				printf("%s %s\n", name, iv.String())
			}
			continue
		}
		printf("# HELP %s %s\n", name, sanitizeHelp(m.help))
		printf("# TYPE %s %s\n", name, m.typ)
		if !m.isMap {
			printf("%s %s\n", name, v.String())
			continue
		}
		mp, ok := v.(*expvar.Map)
		if !ok {
			continue
		}
		sub := make([]expvar.KeyValue, 0, 8)
		mp.Do(func(kv expvar.KeyValue) { sub = append(sub, kv) })
		sort.Slice(sub, func(i, j int) bool { return sub[i].Key < sub[j].Key })
		for _, kv := range sub {
			printf("%s{%s=\"%s\"} %s\n", name, m.label, escapeLabel(kv.Key), kv.Value.String())
		}
	}
	return err
}

func sanitizeHelp(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// escapeLabel escapes backslash, double-quote and newline.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
