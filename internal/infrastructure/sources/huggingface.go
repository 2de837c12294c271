package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/config"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/domain"
	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

const (
	defaultHFAPIURL            = "https://huggingface.co"
	defaultHFDatasetsServerURL = "https://datasets-server.huggingface.co"
)

// HuggingFaceSource watches dataset discussions, searches for freshly created
// datasets in target domains, and probes watched datasets' health.
type HuggingFaceSource struct {
	cfg               config.HuggingFaceConfig
	keywords          []string
	client            *http.Client
	logger            *slog.Logger
	apiURL            string
	datasetsServerURL string
}

var _ ports.SignalSource = (*HuggingFaceSource)(nil)

// NewHuggingFaceSource wires the hub adapter.
func NewHuggingFaceSource(cfg config.HuggingFaceConfig, keywords []string, logger *slog.Logger) *HuggingFaceSource {
	return &HuggingFaceSource{
		cfg:               cfg,
		keywords:          keywords,
		client:            &http.Client{Timeout: 15 * time.Second},
		logger:            logger,
		apiURL:            defaultHFAPIURL,
		datasetsServerURL: defaultHFDatasetsServerURL,
	}
}

// Name identifies the adapter.
func (h *HuggingFaceSource) Name() string { return "huggingface" }

// FetchSignals gathers discussion, dataset-search, and health signals.
func (h *HuggingFaceSource) FetchSignals(ctx context.Context) ([]domain.Signal, error) {
	if h.cfg.Token == "" {
		h.debug("skipping", "reason", "HF_TOKEN not set")
		return nil, nil
	}

	var signals []domain.Signal
	signals = append(signals, h.fetchDiscussions(ctx)...)
	signals = append(signals, h.fetchRecentDatasets(ctx)...)
	signals = append(signals, h.fetchDatasetHealth(ctx)...)

	unique := dedupeByURL(signals)
	h.debug("scan complete", "signals", len(unique))
	return unique, nil
}

type hfDiscussion struct {
	Num       int    `json:"num"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
}

type hfDiscussionDetail struct {
	Events []struct {
		Content string `json:"content"`
	} `json:"events"`
}

// fetchDiscussions scans discussion threads on the watched datasets.
func (h *HuggingFaceSource) fetchDiscussions(ctx context.Context) []domain.Signal {
	var signals []domain.Signal

	for _, datasetID := range h.cfg.WatchedDatasets {
		endpoint := fmt.Sprintf("%s/api/datasets/%s/discussions", h.apiURL, datasetID)
		var listing struct {
			Discussions []hfDiscussion `json:"discussions"`
		}
		if err := getJSON(ctx, h.client, endpoint, h.authHeaders(), &listing); err != nil {
			h.debug("discussion listing failed", "dataset", datasetID, "error", err)
			continue
		}

		for _, disc := range listing.Discussions {
			fullText := disc.Title
			detailURL := fmt.Sprintf("%s/api/datasets/%s/discussions/%d", h.apiURL, datasetID, disc.Num)
			var detail hfDiscussionDetail
			if err := getJSON(ctx, h.client, detailURL, h.authHeaders(), &detail); err == nil {
				parts := []string{disc.Title}
				for _, event := range detail.Events {
					if event.Content != "" {
						parts = append(parts, event.Content)
					}
				}
				fullText = strings.Join(parts, " ")
			}

			if !MatchesKeywords(fullText, h.keywords) {
				continue
			}

			signals = append(signals, domain.Signal{
				Source: "huggingface",
				Title:  disc.Title,
				Text:   truncateText(fullText, signalTextLimit),
				Author: disc.Author,
				URL:    fmt.Sprintf("%s/datasets/%s/discussions/%d", defaultHFAPIURL, datasetID, disc.Num),
				Extra: map[string]any{
					"dataset_id":    datasetID,
					"discussion_id": disc.Num,
					"created_at":    disc.CreatedAt,
				},
			})
		}
	}

	return signals
}

type hfDataset struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// fetchRecentDatasets searches for recently created datasets per term.
func (h *HuggingFaceSource) fetchRecentDatasets(ctx context.Context) []domain.Signal {
	var signals []domain.Signal

	for _, term := range h.cfg.SearchTerms {
		params := url.Values{}
		params.Set("search", term)
		params.Set("sort", "createdAt")
		params.Set("direction", "-1")
		params.Set("limit", "10")

		var datasets []hfDataset
		endpoint := fmt.Sprintf("%s/api/datasets?%s", h.apiURL, params.Encode())
		if err := getJSON(ctx, h.client, endpoint, h.authHeaders(), &datasets); err != nil {
			h.debug("dataset search failed", "term", term, "error", err)
			continue
		}

		for _, ds := range datasets {
			if !MatchesKeywords(ds.ID+" "+ds.Description, h.keywords) {
				continue
			}
			signals = append(signals, domain.Signal{
				Source: "huggingface_dataset",
				Title:  ds.ID,
				Text:   truncateText(ds.Description, signalTextLimit),
				Author: ds.Author,
				URL:    fmt.Sprintf("%s/datasets/%s", defaultHFAPIURL, ds.ID),
				Extra: map[string]any{
					"dataset_id": ds.ID,
					"created_at": ds.CreatedAt,
				},
			})
		}
	}

	return signals
}

// fetchDatasetHealth flags watched datasets whose preview or viewer is broken.
func (h *HuggingFaceSource) fetchDatasetHealth(ctx context.Context) []domain.Signal {
	var signals []domain.Signal

	for _, datasetID := range h.cfg.WatchedDatasets {
		endpoint := fmt.Sprintf("%s/is-valid?dataset=%s", h.datasetsServerURL, url.QueryEscape(datasetID))
		var health struct {
			Preview *bool `json:"preview"`
			Viewer  *bool `json:"viewer"`
		}
		if err := getJSON(ctx, h.client, endpoint, nil, &health); err != nil {
			h.debug("health probe failed", "dataset", datasetID, "error", err)
			continue
		}

		previewOK := health.Preview == nil || *health.Preview
		viewerOK := health.Viewer == nil || *health.Viewer
		if previewOK && viewerOK {
			continue
		}

		signals = append(signals, domain.Signal{
			Source: "huggingface_health",
			Title:  "Dataset health issue: " + datasetID,
			Text: fmt.Sprintf("Dataset %s has health issues: preview=%t viewer=%t",
				datasetID, previewOK, viewerOK),
			URL: fmt.Sprintf("%s/datasets/%s", defaultHFAPIURL, datasetID),
			Extra: map[string]any{
				"dataset_id": datasetID,
			},
		})
	}

	return signals
}

func (h *HuggingFaceSource) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + h.cfg.Token}
}

func (h *HuggingFaceSource) debug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
