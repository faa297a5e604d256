package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docuscribe/internal/api"
	"github.com/jackzampolin/docuscribe/internal/docstore"
	"github.com/jackzampolin/docuscribe/internal/metrics"
	"github.com/jackzampolin/docuscribe/internal/retrieval"
	"github.com/jackzampolin/docuscribe/internal/svcctx"
)

// FetchDocEndpoint handles GET /api/fetch_doc_content/{doc_id}.
type FetchDocEndpoint struct{}

var _ api.Endpoint = (*FetchDocEndpoint)(nil)

func (e *FetchDocEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/fetch_doc_content/{doc_id}", e.handler
}

func (e *FetchDocEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Fetch document content
//	@Description	Without parameters returns the document index. start/max_length return one
//	@Description	contiguous slice with pagination hints. ranges ("0-100,400-450") returns the
//	@Description	merged ranges as paragraphs and takes precedence over start/max_length.
//	@Tags			documents
//	@Produce		json
//	@Param			doc_id		path		string	true	"Document ID"
//	@Param			start		query		int		false	"First word offset (single-range mode)"
//	@Param			max_length	query		int		false	"Words to return, capped at 50000 (single-range mode)"
//	@Param			ranges		query		string	false	"Comma-separated start-end word ranges (multi-range mode)"
//	@Success		200			{object}	retrieval.Response
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/api/fetch_doc_content/{doc_id} [get]
func (e *FetchDocEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec := svcctx.MetricsFrom(ctx)

	req, err := parseFetchRequest(r.URL.Query())
	mode := string(req.Mode())
	if err != nil {
		rec.Fetch(mode, metrics.ResultBadRequest, 0)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	store := svcctx.StoreFrom(ctx)
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "document store not initialized")
		return
	}

	doc, err := store.Get(ctx, r.PathValue("doc_id"))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			rec.Fetch(mode, metrics.ResultNotFound, 0)
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		rec.Fetch(mode, metrics.ResultError, 0)
		svcctx.LoggerFrom(ctx).Error("fetch document failed", "doc_id", r.PathValue("doc_id"), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp, err := svcctx.ResolverFrom(ctx).Resolve(doc, req)
	if err != nil {
		if errors.Is(err, retrieval.ErrInvalidRange) {
			rec.Fetch(mode, metrics.ResultInvalidRange, 0)
			svcctx.LoggerFrom(ctx).Debug("rejected ranges", "ranges", req.Ranges, "error", err)
			writeError(w, http.StatusBadRequest, "Invalid ranges")
			return
		}
		rec.Fetch(mode, metrics.ResultError, 0)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rec.Fetch(mode, metrics.ResultOK, resp.ReturnedWords())
	if m, ok := resp.Meta.(retrieval.MultiMeta); ok {
		rec.MergedRanges(len(m.MergedRanges))
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseFetchRequest reads start, max_length and ranges. The returned
// request is usable for mode labelling even when err is non-nil.
func parseFetchRequest(q url.Values) (retrieval.Request, error) {
	req := retrieval.Request{Ranges: q.Get("ranges")}
	var err error
	if req.Start, err = queryInt(q, "start"); err != nil {
		return req, err
	}
	if req.MaxLength, err = queryInt(q, "max_length"); err != nil {
		return req, err
	}
	return req, nil
}

// FetchDocResponse mirrors retrieval.Response for clients, keeping meta
// generic since its shape depends on the mode.
type FetchDocResponse struct {
	Document retrieval.DocumentView `json:"document"`
	Meta     map[string]any         `json:"meta"`
}

func (e *FetchDocEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		start, maxLength int
		ranges           string
		contentOnly      bool
	)
	cmd := &cobra.Command{
		Use:   "fetch <doc_id>",
		Short: "Fetch a document index, a word range, or several ranges",
		Long: `Fetch document content by word offset.

With no flags the document index is returned. --start/--max-length return a
single slice with pagination hints. --ranges returns several merged slices.

Examples:
  docuscribe api docs fetch <id>
  docuscribe api docs fetch <id> --start 0 --max-length 500
  docuscribe api docs fetch <id> --ranges 0-100,400-450 --content`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			q := url.Values{}
			if cmd.Flags().Changed("start") {
				q.Set("start", strconv.Itoa(start))
			}
			if cmd.Flags().Changed("max-length") {
				q.Set("max_length", strconv.Itoa(maxLength))
			}
			if ranges != "" {
				q.Set("ranges", ranges)
			}

			var resp FetchDocResponse
			if err := client.Get(cmd.Context(), "/api/fetch_doc_content/"+url.PathEscape(args[0]), q, &resp); err != nil {
				return err
			}
			if contentOnly && resp.Document.Content != nil {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), *resp.Document.Content)
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "First word offset")
	cmd.Flags().IntVar(&maxLength, "max-length", retrieval.DefaultMaxLength, "Words to return")
	cmd.Flags().StringVar(&ranges, "ranges", "", "Comma-separated start-end word ranges")
	cmd.Flags().BoolVar(&contentOnly, "content", false, "Print only the content text")
	return cmd
}
