package endpoints

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docuscribe/internal/api"
	"github.com/jackzampolin/docuscribe/internal/metrics"
	"github.com/jackzampolin/docuscribe/internal/svcctx"
	"github.com/jackzampolin/docuscribe/internal/types"
)

// ListDocsResponse is the response for listing documents.
type ListDocsResponse struct {
	Documents []types.Summary `json:"documents"`
}

// ListDocsEndpoint handles GET /api/list_all_docs.
type ListDocsEndpoint struct{}

var _ api.Endpoint = (*ListDocsEndpoint)(nil)

func (e *ListDocsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/list_all_docs", e.handler
}

func (e *ListDocsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List documents
//	@Description	List document summaries, most recently updated first
//	@Tags			documents
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum documents to return (1-1000)"	default(100)
//	@Param			offset	query		int	false	"Documents to skip"						default(0)
//	@Success		200		{object}	ListDocsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/list_all_docs [get]
func (e *ListDocsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec := svcctx.MetricsFrom(ctx)

	q := r.URL.Query()
	limit, err := queryInt(q, "limit")
	if err != nil {
		rec.Listing(metrics.ResultBadRequest)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(q, "offset")
	if err != nil {
		rec.Listing(metrics.ResultBadRequest)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	store := svcctx.StoreFrom(ctx)
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "document store not initialized")
		return
	}

	off := 0
	if offset != nil {
		off = max(*offset, 0)
	}
	docs, err := store.List(ctx, svcctx.ListingFrom(ctx).ClampLimit(limit), off)
	if err != nil {
		rec.Listing(metrics.ResultError)
		svcctx.LoggerFrom(ctx).Error("list documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []types.Summary{}
	}

	rec.Listing(metrics.ResultOK)
	writeJSON(w, http.StatusOK, ListDocsResponse{Documents: docs})
}

func (e *ListDocsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			q := url.Values{}
			if cmd.Flags().Changed("limit") {
				q.Set("limit", strconv.Itoa(limit))
			}
			if cmd.Flags().Changed("offset") {
				q.Set("offset", strconv.Itoa(offset))
			}

			var resp ListDocsResponse
			if err := client.Get(cmd.Context(), "/api/list_all_docs", q, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum documents to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Documents to skip")
	return cmd
}
