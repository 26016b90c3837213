package businessflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/app/services"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"github.com/amirphl/masuk10/utils"
	"go.uber.org/zap"
)

const generateCodeAttempts = 5

// ShortLinkCacheInvalidator drops a cached lookup after a write.
type ShortLinkCacheInvalidator interface {
	Invalidate(ctx context.Context, code string) error
}

// AdminShortLinkFlow provides the back-office use cases on short links.
// Codes are immutable once created; updates and deletes invalidate the lookup cache.
type AdminShortLinkFlow interface {
	List(ctx context.Context, req dto.PageRequest) (*dto.ListShortLinksResponse, error)
	Create(ctx context.Context, req *dto.CreateShortLinkRequest, userID uint) (*dto.ShortLinkDTO, error)
	Get(ctx context.Context, id uint) (*dto.ShortLinkDTO, error)
	Update(ctx context.Context, id uint, req *dto.UpdateShortLinkRequest) (*dto.ShortLinkDTO, error)
	Delete(ctx context.Context, id uint) error
	QRCode(ctx context.Context, id uint, req dto.QRCodeRequest) (*QRCodeImage, error)
}

// QRCodeImage is a rendered QR code ready to be written to the response.
type QRCodeImage struct {
	Content     []byte
	ContentType string
	Filename    string
}

type AdminShortLinkFlowImpl struct {
	repo      repository.ShortLinkRepository
	clickRepo repository.ShortLinkClickRepository
	cache     ShortLinkCacheInvalidator
	qr        services.QRCodeService
	baseURL   string
	logger    *zap.Logger
}

func NewAdminShortLinkFlow(
	repo repository.ShortLinkRepository,
	clickRepo repository.ShortLinkClickRepository,
	cache ShortLinkCacheInvalidator,
	qr services.QRCodeService,
	baseURL string,
	logger *zap.Logger,
) AdminShortLinkFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminShortLinkFlowImpl{
		repo:      repo,
		clickRepo: clickRepo,
		cache:     cache,
		qr:        qr,
		baseURL:   baseURL,
		logger:    logger,
	}
}

func (f *AdminShortLinkFlowImpl) List(ctx context.Context, req dto.PageRequest) (*dto.ListShortLinksResponse, error) {
	page, limit, offset := normalizePage(req.Page, req.Limit, DefaultPageLimit)
	filter := models.ShortLinkFilter{Search: searchPtr(req.Search)}

	total, err := f.repo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_SHORT_LINKS_FAILED", "Failed to count short links", err)
	}
	rows, err := f.repo.ListWithClicks(ctx, filter, "short_links.created_at DESC, short_links.id DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_SHORT_LINKS_FAILED", "Failed to list short links", err)
	}

	items := make([]dto.ShortLinkDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToShortLinkDTO(row.ShortLink, row.ClickCount, f.baseURL))
	}

	return &dto.ListShortLinksResponse{
		Items: items,
		Pagination: dto.PaginationInfo{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: totalPages(total, limit),
		},
	}, nil
}

func (f *AdminShortLinkFlowImpl) Create(ctx context.Context, req *dto.CreateShortLinkRequest, userID uint) (*dto.ShortLinkDTO, error) {
	if req == nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Request body is required", nil)
	}
	if err := validateDestination(req.Destination); err != nil {
		return nil, NewBusinessError("INVALID_DESTINATION", "Destination must be an absolute http(s) URL", err)
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		generated, err := f.generateUniqueCode(ctx)
		if err != nil {
			return nil, err
		}
		code = generated
	} else {
		if err := ValidateCode(code); err != nil {
			if errors.Is(err, ErrReservedCode) {
				return nil, NewBusinessErrorf("RESERVED_CODE", "Code %q is reserved", err, code)
			}
			return nil, NewBusinessError("INVALID_CODE", "Code must be 2-50 characters of letters, digits or hyphens", err)
		}
		existing, err := f.repo.ByCode(ctx, code)
		if err != nil {
			return nil, NewBusinessError("CREATE_SHORT_LINK_FAILED", "Failed to check code availability", err)
		}
		if existing != nil {
			return nil, NewBusinessErrorf("CODE_ALREADY_EXISTS", "Code %q already exists", ErrCodeAlreadyExists, code)
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	link := &models.ShortLink{
		Code:        code,
		Destination: strings.TrimSpace(req.Destination),
		Title:       trimmedPtr(req.Title),
		Description: trimmedPtr(req.Description),
		IsActive:    &isActive,
		ExpiresAt:   utils.TimeToUTCPtr(req.ExpiresAt),
	}
	if userID != 0 {
		link.CreatedBy = &userID
	}

	if err := f.repo.Save(ctx, link); err != nil {
		// a concurrent insert of the same code loses on the unique index
		if existing, lookupErr := f.repo.ByCode(ctx, code); lookupErr == nil && existing != nil {
			return nil, NewBusinessErrorf("CODE_ALREADY_EXISTS", "Code %q already exists", ErrCodeAlreadyExists, code)
		}
		return nil, NewBusinessError("CREATE_SHORT_LINK_FAILED", "Failed to create short link", err)
	}

	f.logger.Info("short link created", zap.Uint("id", link.ID), zap.String("code", link.Code), zap.Uint("created_by", userID))
	out := ToShortLinkDTO(*link, 0, f.baseURL)
	return &out, nil
}

func (f *AdminShortLinkFlowImpl) generateUniqueCode(ctx context.Context) (string, error) {
	for range generateCodeAttempts {
		code := GenerateCode()
		if IsReservedCode(code) {
			continue
		}
		existing, err := f.repo.ByCode(ctx, code)
		if err != nil {
			return "", NewBusinessError("CREATE_SHORT_LINK_FAILED", "Failed to check code availability", err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", NewBusinessError("CODE_GENERATION_FAILED", "Failed to generate a unique code", ErrCodeAlreadyExists)
}

func (f *AdminShortLinkFlowImpl) Get(ctx context.Context, id uint) (*dto.ShortLinkDTO, error) {
	link, err := f.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	clicks, err := f.clicksFor(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	out := ToShortLinkDTO(*link, clicks, f.baseURL)
	return &out, nil
}

func (f *AdminShortLinkFlowImpl) Update(ctx context.Context, id uint, req *dto.UpdateShortLinkRequest) (*dto.ShortLinkDTO, error) {
	if req == nil || (req.Destination == nil && req.Title == nil && req.Description == nil &&
		req.IsActive == nil && req.ExpiresAt == nil && !req.ClearExpiresAt) {
		return nil, NewBusinessError("VALIDATION_ERROR", "Nothing to update", ErrShortLinkUpdateNone)
	}

	link, err := f.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Destination != nil {
		if err := validateDestination(*req.Destination); err != nil {
			return nil, NewBusinessError("INVALID_DESTINATION", "Destination must be an absolute http(s) URL", err)
		}
		link.Destination = strings.TrimSpace(*req.Destination)
	}
	if req.Title != nil {
		link.Title = trimmedPtr(req.Title)
	}
	if req.Description != nil {
		link.Description = trimmedPtr(req.Description)
	}
	if req.IsActive != nil {
		link.IsActive = utils.ToPtr(*req.IsActive)
	}
	if req.ClearExpiresAt {
		link.ExpiresAt = nil
	} else if req.ExpiresAt != nil {
		link.ExpiresAt = utils.TimeToUTCPtr(req.ExpiresAt)
	}
	link.UpdatedAt = utils.UTCNow()

	if err := f.repo.Update(ctx, link); err != nil {
		return nil, NewBusinessError("UPDATE_SHORT_LINK_FAILED", "Failed to update short link", err)
	}
	f.invalidate(ctx, link.Code)

	clicks, err := f.clicksFor(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	out := ToShortLinkDTO(*link, clicks, f.baseURL)
	return &out, nil
}

func (f *AdminShortLinkFlowImpl) Delete(ctx context.Context, id uint) error {
	link, err := f.mustGet(ctx, id)
	if err != nil {
		return err
	}
	if err := f.repo.DeleteWithClicks(ctx, link.ID); err != nil {
		return NewBusinessError("DELETE_SHORT_LINK_FAILED", "Failed to delete short link", err)
	}
	f.invalidate(ctx, link.Code)
	f.logger.Info("short link deleted", zap.Uint("id", link.ID), zap.String("code", link.Code))
	return nil
}

func (f *AdminShortLinkFlowImpl) QRCode(ctx context.Context, id uint, req dto.QRCodeRequest) (*QRCodeImage, error) {
	link, err := f.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	format := services.QRFormat(strings.ToLower(req.Format))
	if format == "" {
		format = services.QRFormatPNG
	}
	size := req.Size
	if size == 0 {
		size = services.QRDefaultSize
		if req.Download {
			size = services.QRDownloadSize
		}
	}

	content, contentType, err := f.qr.Render(ShortURL(f.baseURL, link.Code), format, size)
	if err != nil {
		return nil, NewBusinessError("QR_CODE_FAILED", "Failed to render QR code", err)
	}
	return &QRCodeImage{
		Content:     content,
		ContentType: contentType,
		Filename:    fmt.Sprintf("qr-%s.%s", link.Code, format),
	}, nil
}

func (f *AdminShortLinkFlowImpl) mustGet(ctx context.Context, id uint) (*models.ShortLink, error) {
	link, err := f.repo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("FETCH_SHORT_LINK_FAILED", "Failed to fetch short link", err)
	}
	if link == nil {
		return nil, NewBusinessError("SHORT_LINK_NOT_FOUND", "Short link not found", ErrShortLinkNotFound)
	}
	return link, nil
}

func (f *AdminShortLinkFlowImpl) clicksFor(ctx context.Context, id uint) (int64, error) {
	counts, err := f.clickRepo.CountByShortLinkIDs(ctx, []uint{id})
	if err != nil {
		return 0, NewBusinessError("FETCH_CLICKS_FAILED", "Failed to count clicks", err)
	}
	return counts[id], nil
}

// invalidate is best effort: a stale entry only lives until its TTL.
func (f *AdminShortLinkFlowImpl) invalidate(ctx context.Context, code string) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Invalidate(ctx, code); err != nil {
		f.logger.Warn("short link cache invalidation failed", zap.String("code", code), zap.Error(err))
	}
}

func validateDestination(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidDestination
	}
	return nil
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
