package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/masuk10/models"
	"gorm.io/gorm"
)

// ShortLinkClickRepositoryImpl implements ShortLinkClickRepository
type ShortLinkClickRepositoryImpl struct {
	*BaseRepository[models.ShortLinkClick, models.ShortLinkClickFilter]
}

func NewShortLinkClickRepository(db *gorm.DB) ShortLinkClickRepository {
	return &ShortLinkClickRepositoryImpl{BaseRepository: NewBaseRepository[models.ShortLinkClick, models.ShortLinkClickFilter](db)}
}

func (r *ShortLinkClickRepositoryImpl) applyFilter(db *gorm.DB, f models.ShortLinkClickFilter) *gorm.DB {
	if f.ShortLinkID != nil {
		db = db.Where("short_link_id = ?", *f.ShortLinkID)
	}
	if f.ClickedAfter != nil {
		db = db.Where("clicked_at >= ?", f.ClickedAfter.UTC())
	}
	if f.ClickedBefore != nil {
		db = db.Where("clicked_at <= ?", f.ClickedBefore.UTC())
	}
	return db
}

func (r *ShortLinkClickRepositoryImpl) ByFilter(ctx context.Context, filter models.ShortLinkClickFilter, orderBy string, limit, offset int) ([]*models.ShortLinkClick, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.ShortLinkClick{}), filter), orderBy, limit, offset)
	var rows []*models.ShortLinkClick
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}
	return rows, nil
}

func (r *ShortLinkClickRepositoryImpl) Count(ctx context.Context, filter models.ShortLinkClickFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.ShortLinkClick{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

func (r *ShortLinkClickRepositoryImpl) Exists(ctx context.Context, filter models.ShortLinkClickFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// CountByShortLinkIDs returns click totals keyed by short link id. Links without clicks are absent.
func (r *ShortLinkClickRepositoryImpl) CountByShortLinkIDs(ctx context.Context, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		ShortLinkID uint
		Total       int64
	}
	err := r.getDB(ctx).Model(&models.ShortLinkClick{}).
		Select("short_link_id, COUNT(*) AS total").
		Where("short_link_id IN ?", ids).
		Group("short_link_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks per short link: %w", err)
	}
	for _, row := range rows {
		out[row.ShortLinkID] = row.Total
	}
	return out, nil
}

// TopShortLinks ranks short links by clicks inside [from, to].
// Links without clicks in range still fill the list when fewer than limit were clicked.
func (r *ShortLinkClickRepositoryImpl) TopShortLinks(ctx context.Context, from, to time.Time, limit int) ([]*models.ShortLinkWithClicks, error) {
	var rows []*models.ShortLinkWithClicks
	err := r.getDB(ctx).Model(&models.ShortLink{}).
		Select("short_links.*, COUNT(short_link_clicks.id) AS click_count").
		Joins("LEFT JOIN short_link_clicks ON short_link_clicks.short_link_id = short_links.id AND short_link_clicks.clicked_at >= ? AND short_link_clicks.clicked_at <= ?", from.UTC(), to.UTC()).
		Group("short_links.id").
		Order("click_count DESC").
		Order("short_links.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank short links: %w", err)
	}
	return rows, nil
}

// GroupByDevice counts clicks per device type; missing values are reported as unknown.
func (r *ShortLinkClickRepositoryImpl) GroupByDevice(ctx context.Context, from, to time.Time) ([]*models.ClickGroupCount, error) {
	return r.groupBy(ctx, "device_type", from, to)
}

// GroupByBrowser counts clicks per browser, most used first.
func (r *ShortLinkClickRepositoryImpl) GroupByBrowser(ctx context.Context, from, to time.Time) ([]*models.ClickGroupCount, error) {
	return r.groupBy(ctx, "browser", from, to)
}

func (r *ShortLinkClickRepositoryImpl) groupBy(ctx context.Context, column string, from, to time.Time) ([]*models.ClickGroupCount, error) {
	label := fmt.Sprintf("COALESCE(%s, '%s')", column, models.DeviceUnknown)
	var rows []*models.ClickGroupCount
	err := r.getDB(ctx).Model(&models.ShortLinkClick{}).
		Select(label+" AS label, COUNT(*) AS total").
		Where("clicked_at >= ? AND clicked_at <= ?", from.UTC(), to.UTC()).
		Group(label).
		Order("total DESC").
		Order("label ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group clicks by %s: %w", column, err)
	}
	return rows, nil
}
