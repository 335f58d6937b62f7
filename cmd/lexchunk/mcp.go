package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/chunker"
	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/llm"
	"github.com/ba0f3/lexchunk/internal/logger"
	"github.com/ba0f3/lexchunk/internal/store"
)

const (
	mcpDefaultLimit = 10
	uriScheme       = "lexchunk://"
	guideTitle      = "lexchunk search guide"
	guideBody       = `# lexchunk

lexchunk indexes French legal and administrative texts as overlapping chunks
tagged with content keywords (procedure, definition, obligation, entitlement,
sanction, aid). Documents carry a domain (legal, human-resources, economic, other)
and a subcategory.

## Tools

- **chunk_text**: split raw text into chunks without touching the index.
- **classify**: domain, subcategory and content tags of a text.
- **search**: case-insensitive text search over indexed chunks. All terms must match.
- **vsearch**: semantic search over chunk embeddings (run ` + "`lexchunk embed`" + ` first).
- **query**: hybrid text + vector search with reciprocal rank fusion.
- **get**: chunks of one document, or its body with ` + "`body: true`" + `.
- **status**: index counts per collection and domain.

## Filters

Search tools accept ` + "`collection`" + `, ` + "`domain`" + ` and ` + "`keywords`" + `.
Keywords must all be present on a chunk, e.g. ` + "`[\"obligation\", \"sanction\"]`" + `.

## Resources

Read a document with ` + "`resources/read`" + ` and uri ` + "`lexchunk://collection/path/to/file.md`" + `.`
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server (stdio)",
	Long:  "Start the Model Context Protocol server. Exposes chunking, classification, search and document resources over stdio.",
	RunE:  runMCPServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// mcpDeps is what the tool handlers share.
type mcpDeps struct {
	cfg    *config.Config
	store  *store.Store
	engine *engine
	embed  llm.Embedder
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	d := &mcpDeps{cfg: cfg, store: s, engine: eng, embed: newEmbedder(cfg)}
	server := newMCPServer(d)
	log.Info("mcp server listening on stdio", "index", getIndexName())
	return server.Run(ctx, &mcp.StdioTransport{})
}

func newMCPServer(d *mcpDeps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "lexchunk", Version: "1.0.0"}, nil)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "document",
		URITemplate: uriScheme + "{+path}",
		MIMEType:    "text/markdown",
	}, resourceHandler(d.store))
	server.AddPrompt(&mcp.Prompt{
		Name:        "guide",
		Description: "How to search the lexchunk legal index",
	}, func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: guideTitle,
			Messages:    []*mcp.PromptMessage{{Role: "user", Content: &mcp.TextContent{Text: guideBody}}},
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chunk_text",
		Description: "Split a French legal text into overlapping, keyword-tagged chunks. Does not modify the index.",
	}, chunkTool(d))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify",
		Description: "Classify a text by domain, subcategory and content tags.",
	}, classifyTool(d))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Case-insensitive text search over indexed chunks. Every query term must appear in a chunk.",
	}, searchTool(d, "text"))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vsearch",
		Description: "Semantic similarity search using chunk embeddings. Requires 'lexchunk embed'.",
	}, searchTool(d, "vec"))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "query",
		Description: "Hybrid text and vector search with reciprocal rank fusion. Falls back to text search without embeddings.",
	}, searchTool(d, "hybrid"))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get",
		Description: "Retrieve the chunks of an indexed document by collection/path, or its body.",
	}, getTool(d))
	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Show index status: documents, chunks, vectors, domains and collections.",
	}, statusTool(d))
	return server
}

func toolError(msg string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg + ": " + err.Error()}},
		IsError: true,
	}
}

func resourceHandler(s *store.Store) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		if !strings.HasPrefix(uri, uriScheme) {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		decoded, err := url.PathUnescape(strings.TrimPrefix(uri, uriScheme))
		if err != nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		collection, path, ok := store.SplitDisplayPath(decoded)
		if !ok {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		body, err := s.GetDocumentBody(ctx, collection, path, 0, 0)
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "text/markdown", Text: addLineNumbers(body, 1)}},
		}, nil
	}
}

type chunkArgs struct {
	Text       string         `json:"text" jsonschema:"the document text to chunk"`
	Title      string         `json:"title,omitempty" jsonschema:"document title, emitted as a title chunk when longer than 10 characters"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"metadata merged into every chunk"`
	TargetSize int            `json:"targetSize,omitempty" jsonschema:"target chunk size in characters (default 300)"`
	Overlap    int            `json:"overlap,omitempty" jsonschema:"overlap between chunks in characters (default 50)"`
	MinSize    int            `json:"minSize,omitempty" jsonschema:"minimum chunk size in characters (default 100)"`
}

func chunkTool(d *mcpDeps) func(context.Context, *mcp.CallToolRequest, chunkArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args chunkArgs) (*mcp.CallToolResult, any, error) {
		eng := d.engine
		if args.TargetSize > 0 || args.Overlap > 0 || args.MinSize > 0 {
			cfg := *d.cfg
			if args.TargetSize > 0 {
				cfg.Chunking.TargetSize = args.TargetSize
			}
			if args.Overlap > 0 {
				cfg.Chunking.Overlap = args.Overlap
			}
			if args.MinSize > 0 {
				cfg.Chunking.MinSize = args.MinSize
			}
			var err error
			eng, err = newEngine(&cfg, logger.FromContext(ctx))
			if err != nil {
				return toolError("Invalid chunking options", err), nil, nil
			}
		}
		chunks, err := eng.pipeline.ProcessDocument(ctx, chunker.Document{
			Title:    args.Title,
			Content:  args.Text,
			Metadata: args.Metadata,
		})
		if err != nil {
			return toolError("Chunking failed", err), nil, nil
		}
		st := chunker.Summarize(chunks)
		summary := fmt.Sprintf("%d chunks, %d words, average %d characters", st.TotalChunks, st.TotalWords, st.AvgChunkSize)
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: summary}},
			StructuredContent: map[string]any{"chunks": chunks, "stats": st},
		}, nil, nil
	}
}

type classifyArgs struct {
	Text  string `json:"text" jsonschema:"the text to classify"`
	Title string `json:"title,omitempty" jsonschema:"optional document title"`
}

func classifyTool(d *mcpDeps) func(context.Context, *mcp.CallToolRequest, classifyArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args classifyArgs) (*mcp.CallToolResult, any, error) {
		res := classifyText(d.engine.classifiers, args.Title, args.Text)
		text := fmt.Sprintf("domain: %s\nsubcategory: %s (%s)\ntags: %s",
			res.Domain, res.Subcategory, res.SubDomain, strings.Join(res.Tags, ", "))
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: text}},
			StructuredContent: res,
		}, nil, nil
	}
}

type searchArgs struct {
	Query      string   `json:"query" jsonschema:"search query, keywords or a natural language question"`
	Limit      int      `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
	MinScore   float64  `json:"minScore,omitempty" jsonschema:"minimum relevance score 0-1"`
	Collection string   `json:"collection,omitempty" jsonschema:"restrict to a collection"`
	Domain     string   `json:"domain,omitempty" jsonschema:"restrict to a domain: legal, human-resources, economic or other"`
	Keywords   []string `json:"keywords,omitempty" jsonschema:"content keywords every result chunk must carry"`
}

func (a searchArgs) filter() store.Filter {
	limit := a.Limit
	if limit <= 0 {
		limit = mcpDefaultLimit
	}
	return store.Filter{
		Collection: a.Collection,
		Domain:     a.Domain,
		Keywords:   a.Keywords,
		Limit:      limit,
		MinScore:   a.MinScore,
	}
}

func searchTool(d *mcpDeps, mode string) func(context.Context, *mcp.CallToolRequest, searchArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args searchArgs) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(args.Query) == "" {
			return toolError("Search failed", errors.New("empty query")), nil, nil
		}
		var results []store.SearchResult
		var err error
		switch mode {
		case "vec":
			results, err = vectorSearch(ctx, d.store, d.embed, args.Query, args.filter())
		case "hybrid":
			results, err = hybridSearch(ctx, d.store, d.embed, args.Query, args.filter())
		default:
			results, err = d.store.SearchChunks(ctx, args.Query, args.filter())
		}
		if err != nil {
			return toolError("Search failed", err), nil, nil
		}
		structured := make([]map[string]any, len(results))
		for i, r := range results {
			structured[i] = map[string]any{
				"chunk":    r.ID,
				"file":     r.DisplayPath(),
				"seq":      r.Index,
				"title":    r.Title,
				"domain":   r.Domain,
				"keywords": r.Keywords,
				"score":    roundScore(r.Score),
				"snippet":  truncateSnippet(r.Text, 300),
			}
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: formatSearchSummary(results, args.Query)}},
			StructuredContent: map[string]any{"results": structured},
		}, nil, nil
	}
}

func formatSearchSummary(results []store.SearchResult, query string) string {
	if len(results) == 0 {
		return "No results found for \"" + query + "\""
	}
	var b strings.Builder
	b.WriteString("Found " + strconv.Itoa(len(results)) + " result(s) for \"" + query + "\":\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "#%d %.0f%% %s [%d] %s (%s)\n",
			r.ID, r.Score*100, r.DisplayPath(), r.Index, r.Title, strings.Join(r.Keywords, ", "))
	}
	return b.String()
}

type getArgs struct {
	File     string `json:"file" jsonschema:"document as collection/path, optionally prefixed with lexchunk://"`
	Body     bool   `json:"body,omitempty" jsonschema:"return the document text instead of its chunks"`
	FromLine int    `json:"fromLine,omitempty" jsonschema:"first line of the body (1-based)"`
	MaxLines int    `json:"maxLines,omitempty" jsonschema:"maximum number of body lines"`
}

func getTool(d *mcpDeps) func(context.Context, *mcp.CallToolRequest, getArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args getArgs) (*mcp.CallToolResult, any, error) {
		collection, path, ok := store.SplitDisplayPath(args.File)
		if !ok {
			return toolError("Invalid file", fmt.Errorf("expected collection/path, got %q", args.File)), nil, nil
		}
		if args.Body || args.FromLine > 0 || args.MaxLines > 0 {
			body, err := d.store.GetDocumentBody(ctx, collection, path, args.FromLine, args.MaxLines)
			if err != nil {
				return toolError("Document not found", err), nil, nil
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: addLineNumbers(body, args.FromLine)}},
			}, nil, nil
		}
		doc, err := d.store.FindActiveDocument(ctx, collection, path)
		if err != nil {
			return toolError("Document not found", err), nil, nil
		}
		chunks, err := d.store.GetDocumentChunks(ctx, doc.ID)
		if err != nil {
			return toolError("Failed to load chunks", err), nil, nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s  %s (%s / %s), %d chunks\n", doc.DisplayPath(), doc.Title, doc.Domain, doc.Subcategory, len(chunks))
		for _, c := range chunks {
			fmt.Fprintf(&b, "\n[%d] %s %s\n%s\n", c.Index, c.Kind, strings.Join(c.Keywords, ", "), c.Text)
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: b.String()}},
			StructuredContent: map[string]any{"document": doc, "chunks": chunks},
		}, nil, nil
	}
}

func statusTool(d *mcpDeps) func(context.Context, *mcp.CallToolRequest, struct{}) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		st, err := d.store.GetStatus(ctx)
		if err != nil {
			return toolError("Failed to get status", err), nil, nil
		}
		lines := []string{
			"lexchunk index status:",
			"  Documents:       " + strconv.Itoa(st.DocCount),
			"  Chunks:          " + strconv.Itoa(st.ChunkCount),
			"  Vectors:         " + strconv.Itoa(st.VectorCount),
			"  Needs embedding: " + strconv.Itoa(st.NeedsEmbedding),
			"  Collections:     " + strconv.Itoa(len(st.Collections)),
		}
		for _, c := range st.Collections {
			lines = append(lines, "    - "+c.Name+" ("+strconv.Itoa(c.ActiveCount)+" docs, "+strconv.Itoa(c.ChunkCount)+" chunks)")
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: strings.Join(lines, "\n")}},
			StructuredContent: st,
		}, nil, nil
	}
}
