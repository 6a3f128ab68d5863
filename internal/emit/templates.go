package emit

import (
	"text/template"

	"github.com/jkoskela/flowforge/pkg/api"
)

const failureModuleName = "on_failure"

// Module templates, one per node type. Each renders a self-contained
// JavaScript module exporting run(input, ctx); the node's resolved config
// is embedded as a const, already JSON-escaped by marshalConfig.

const moduleHeader = `// {{ .ModuleName }} — generated for node "{{ .NodeID }}"{{ if .Label }} ({{ .Label }}){{ end }}.
// Type: {{ .TypeID }}. Do not edit; regenerate from the source graph.

const config = {{ .ConfigJSON }};

`

const promptModule = moduleHeader + `export async function run(input, ctx) {
  const rendered = ctx.renderTemplate(config.instruction, {
    ...input,
    variables: config.variables,
  });
  const completion = await ctx.llm.generate({
    model: config.model,
    prompt: rendered,
    temperature: config.temperature,
    maxTokens: config.max_tokens,
  });
  return { ...input, text: completion.text };
}
`

const toolModule = moduleHeader + `export async function run(input, ctx) {
  const params = config.parameters;
  const response = await ctx.http.request({
    method: params.method || "GET",
    url: params.url,
    headers: params.headers,
    body: params.body,
  });
  return { ...input, [config.action]: response };
}
`

const logicModule = moduleHeader + `export async function run(input, ctx) {
  for (const branch of config.branches) {
    if (!branch.condition || ctx.evaluate(branch.condition, input)) {
      return ctx.route(branch.label, input);
    }
  }
  return ctx.route(null, input);
}
`

const memoryModule = moduleHeader + `export async function run(input, ctx) {
  const store = ctx.memory.scope(config.scope);
  switch (config.operation) {
    case "store":
      await store.set(config.key, config.value ?? input);
      return input;
    case "retrieve":
      return { ...input, [config.key]: await store.get(config.key) };
    case "update":
      await store.set(config.key, config.value ?? input);
      return input;
    case "delete":
      await store.delete(config.key);
      return input;
    default:
      throw new Error("unknown memory operation: " + config.operation);
  }
}
`

const integrationModule = moduleHeader + `export async function run(input, ctx) {
  const response = await ctx.capability(config.capability_id).request({
    endpoint: config.endpoint,
    method: config.method || "GET",
    headers: config.headers,
    body: config.body,
  });
  return ctx.mapResponse(response, config.response_mapping, input);
}
`

const failureModuleSource = `// ` + failureModuleName + ` — generated failure handler.
// The engine invokes this module when any step module throws.

export async function run(error, ctx) {
  ctx.log.error("flow step failed", { message: String(error) });
  return { failed: true, message: String(error) };
}
`

func parseModuleTemplates() map[string]*template.Template {
	sources := map[string]string{
		api.TypePrompt:      promptModule,
		api.TypeTool:        toolModule,
		api.TypeLogic:       logicModule,
		api.TypeMemory:      memoryModule,
		api.TypeIntegration: integrationModule,
		// A manual node never renders a module (the entry defines the
		// input schema instead), but keeping it in the table lets
		// Supports answer uniformly for every core type.
		api.TypeManual: moduleHeader + `export async function run(input) { return input; }
`,
	}
	out := make(map[string]*template.Template, len(sources))
	for typeID, src := range sources {
		out[typeID] = template.Must(template.New(typeID).Parse(src))
	}
	return out
}

func failureModule() api.GeneratedModule {
	return api.GeneratedModule{
		Name:     failureModuleName,
		Language: "javascript",
		Content:  failureModuleSource,
	}
}
