package api

import (
	"net/http"

	"github.com/redlinehq/redline/internal/config"
	"github.com/redlinehq/redline/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for the API module.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec("Redline API", cfg.Version)
	spec.SetDescription("Contract review workflow service: clause analysis, flag triage, and rule analytics.")
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"AnalyzeRequest": {
			Type:     "object",
			Required: []string{"contract_name", "contract", "playbook"},
			Properties: map[string]*openapi.Schema{
				"contract_name": {Type: "string"},
				"contract":      openapi.SchemaRef("DocumentRef"),
				"playbook":      openapi.SchemaRef("DocumentRef"),
				"reviewer":      {Type: "string"},
				"mode":          {Type: "string", Default: "standard"},
			},
		},
		"DocumentRef": {
			Type:     "object",
			Required: []string{"type", "id"},
			Properties: map[string]*openapi.Schema{
				"type": {Type: "string", Enum: []any{"upload", "remote"}},
				"id":   {Type: "string"},
			},
		},
		"AcceptCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"comment":  {Type: "string", Description: "Optional override; empty requests server-side generation"},
				"reviewer": {Type: "string"},
			},
		},
		"CloseCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"reviewer": {Type: "string"},
			},
		},
		"BulkAcceptCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"classifications": {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"risk_levels":     {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"reviewer":        {Type: "string"},
			},
		},
		"ActionResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"status":          {Type: "string", Enum: []any{"accepted", "closed"}},
				"messages":        {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"errors":          {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"review_complete": {Type: "boolean"},
			},
		},
	})

	paths := map[string]*openapi.PathItem{
		"/analyze": {
			Post: &openapi.Operation{
				Summary:     "Run contract analysis",
				Description: "Streams progress events as server-sent events, terminated by exactly one complete or error event.",
				Tags:        []string{"analysis"},
				RequestBody: openapi.RequestBodyJSON("AnalyzeRequest", true),
				Responses: map[int]*openapi.Response{
					200: {Description: "Server-sent event stream"},
					400: openapi.ResponseRef("BadRequest"),
				},
			},
		},
		"/reviews": {
			Get: &openapi.Operation{
				Summary: "List reviews",
				Tags:    []string{"reviews"},
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("status", "string", "Filter by review status", false),
					openapi.QueryParam("search", "string", "Search contract name or reviewer", false),
				},
				Responses: map[int]*openapi.Response{
					200: {Description: "Paginated review list"},
				},
			},
		},
		"/reviews/{id}": {
			Get: &openapi.Operation{
				Summary:    "Get review detail with flags",
				Tags:       []string{"reviews"},
				Parameters: []*openapi.Parameter{openapi.PathParam("id", "Review identifier")},
				Responses: map[int]*openapi.Response{
					200: {Description: "Review with flags"},
					404: openapi.ResponseRef("NotFound"),
				},
			},
			Delete: &openapi.Operation{
				Summary:    "Delete review",
				Tags:       []string{"reviews"},
				Parameters: []*openapi.Parameter{openapi.PathParam("id", "Review identifier")},
				Responses: map[int]*openapi.Response{
					204: {Description: "Deleted"},
					404: openapi.ResponseRef("NotFound"),
				},
			},
		},
		"/reviews/{id}/actions": {
			Get: &openapi.Operation{
				Summary:    "List reviewer actions for a review",
				Tags:       []string{"actions"},
				Parameters: []*openapi.Parameter{openapi.PathParam("id", "Review identifier")},
				Responses: map[int]*openapi.Response{
					200: {Description: "Reviewer actions"},
				},
			},
		},
		"/reviews/{id}/flags/{flagId}/accept": {
			Post: &openapi.Operation{
				Summary:     "Accept a flag",
				Description: "Valid only while the action is pending. Posts the reviewer comment to the source document and notifies the resolved teams.",
				Tags:        []string{"actions"},
				Parameters: []*openapi.Parameter{
					openapi.PathParam("id", "Review identifier"),
					{Name: "flagId", In: "path", Required: true, Schema: &openapi.Schema{Type: "string"}},
				},
				RequestBody: openapi.RequestBodyJSON("AcceptCommand", false),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Transition result", "ActionResult"),
					404: openapi.ResponseRef("NotFound"),
					409: openapi.ResponseRef("Conflict"),
				},
			},
		},
		"/reviews/{id}/flags/{flagId}/close": {
			Post: &openapi.Operation{
				Summary: "Close a flag without action",
				Tags:    []string{"actions"},
				Parameters: []*openapi.Parameter{
					openapi.PathParam("id", "Review identifier"),
					{Name: "flagId", In: "path", Required: true, Schema: &openapi.Schema{Type: "string"}},
				},
				RequestBody: openapi.RequestBodyJSON("CloseCommand", false),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Transition result", "ActionResult"),
					404: openapi.ResponseRef("NotFound"),
					409: openapi.ResponseRef("Conflict"),
				},
			},
		},
		"/reviews/{id}/actions/bulk-accept": {
			Post: &openapi.Operation{
				Summary:     "Bulk-accept pending flags",
				Tags:        []string{"actions"},
				Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Review identifier")},
				RequestBody: openapi.RequestBodyJSON("BulkAcceptCommand", true),
				Responses: map[int]*openapi.Response{
					200: {Description: "Bulk transition result"},
				},
			},
		},
		"/analytics/stats": {
			Get: &openapi.Operation{
				Summary: "Aggregate review statistics",
				Tags:    []string{"analytics"},
				Responses: map[int]*openapi.Response{
					200: {Description: "Review statistics"},
				},
			},
		},
		"/analytics/rules": {
			Get: &openapi.Operation{
				Summary: "Rule effectiveness table",
				Tags:    []string{"analytics"},
				Responses: map[int]*openapi.Response{
					200: {Description: "Per-rule trigger and false-positive counts"},
				},
			},
		},
		"/rulebook": {
			Get: &openapi.Operation{
				Summary: "Current rulebook",
				Tags:    []string{"rulebook"},
				Responses: map[int]*openapi.Response{
					200: {Description: "Loaded rulebook"},
					503: {Description: "Rulebook not loaded"},
				},
			},
		},
		"/rulebook/teams": {
			Get: &openapi.Operation{
				Summary: "Configured team address map",
				Tags:    []string{"rulebook"},
				Responses: map[int]*openapi.Response{
					200: {Description: "Team name to address map"},
				},
			},
		},
		"/documents": {
			Get: &openapi.Operation{
				Summary: "List uploaded documents",
				Tags:    []string{"documents"},
				Responses: map[int]*openapi.Response{
					200: {Description: "Paginated document list"},
				},
			},
			Post: &openapi.Operation{
				Summary:     "Upload a document",
				Description: "Multipart form with a file field and an optional kind field (contract, playbook, rulebook).",
				Tags:        []string{"documents"},
				Responses: map[int]*openapi.Response{
					201: {Description: "Registered document"},
					400: openapi.ResponseRef("BadRequest"),
					413: {Description: "File too large"},
				},
			},
		},
	}

	for path, item := range paths {
		spec.Paths[path] = item
	}

	return spec
}

func specHandler(cfg *config.Config) (http.HandlerFunc, error) {
	data, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return nil, err
	}
	return openapi.ServeSpec(data), nil
}
