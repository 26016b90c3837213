package businessflow

import (
	"context"
	"sort"
	"strings"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"github.com/amirphl/masuk10/utils"
)

// ContentFlow reads and edits the landing page copy, keyed by (section, key, language).
type ContentFlow interface {
	Get(ctx context.Context, req dto.GetContentRequest) (*dto.ContentResponse, error)
	Upsert(ctx context.Context, req *dto.UpsertContentRequest, userID uint) (*dto.LandingContentDTO, error)
}

type ContentFlowImpl struct {
	repo repository.LandingContentRepository
}

func NewContentFlow(repo repository.LandingContentRepository) ContentFlow {
	return &ContentFlowImpl{repo: repo}
}

func (f *ContentFlowImpl) Get(ctx context.Context, req dto.GetContentRequest) (*dto.ContentResponse, error) {
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = utils.DefaultContentLanguage
	}
	filter := models.LandingContentFilter{Language: &language}
	if section := strings.TrimSpace(req.Section); section != "" {
		filter.Section = &section
	}

	rows, err := f.repo.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("FETCH_CONTENT_FAILED", "Failed to fetch content", err)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Section != rows[j].Section {
			return rows[i].Section < rows[j].Section
		}
		return rows[i].Key < rows[j].Key
	})

	resp := &dto.ContentResponse{
		Grouped: GroupContent(rows),
		Raw:     make([]dto.LandingContentDTO, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Raw = append(resp.Raw, ToLandingContentDTO(*row))
	}
	return resp, nil
}

// GroupContent folds rows into section -> key -> value.
func GroupContent(rows []*models.LandingContent) map[string]map[string]string {
	grouped := make(map[string]map[string]string)
	for _, row := range rows {
		section, ok := grouped[row.Section]
		if !ok {
			section = make(map[string]string)
			grouped[row.Section] = section
		}
		section[row.Key] = row.Value
	}
	return grouped
}

func (f *ContentFlowImpl) Upsert(ctx context.Context, req *dto.UpsertContentRequest, userID uint) (*dto.LandingContentDTO, error) {
	if req == nil || strings.TrimSpace(req.Section) == "" || strings.TrimSpace(req.Key) == "" || req.Value == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "Section, key and value are required", ErrContentFieldsRequired)
	}

	content := &models.LandingContent{
		Section:  strings.TrimSpace(req.Section),
		Key:      strings.TrimSpace(req.Key),
		Value:    req.Value,
		Language: strings.TrimSpace(req.Language),
	}
	if userID != 0 {
		content.UpdatedBy = &userID
	}

	if err := f.repo.Upsert(ctx, content); err != nil {
		return nil, NewBusinessError("UPSERT_CONTENT_FAILED", "Failed to save content", err)
	}
	out := ToLandingContentDTO(*content)
	return &out, nil
}
