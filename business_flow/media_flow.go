package businessflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"github.com/amirphl/masuk10/utils"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxMediaSize = int64(5 * 1024 * 1024)
	MediaURLPrefix      = "/uploads/"
	mediaPageLimit      = 20
	thumbnailMaxDim     = 512
	thumbnailQuality    = 75
)

// allowedMediaTypes maps accepted extensions to the content type sniffed from the file head.
var allowedMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// MediaFlow manages images uploaded for the landing page.
type MediaFlow interface {
	Upload(ctx context.Context, req *dto.UploadMediaRequest) (*dto.MediaDTO, error)
	List(ctx context.Context, req dto.ListMediaRequest) (*dto.ListMediaResponse, error)
	Delete(ctx context.Context, id uint) error
	Preview(ctx context.Context, id uint) (string, string, []byte, error)
}

// MediaFlowImpl stores files under uploadDir and their metadata in the database.
type MediaFlowImpl struct {
	repo      repository.MediaRepository
	uploadDir string
	maxSize   int64
	logger    *zap.Logger
}

func NewMediaFlow(repo repository.MediaRepository, uploadDir string, maxSize int64, logger *zap.Logger) MediaFlow {
	if maxSize <= 0 {
		maxSize = DefaultMaxMediaSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaFlowImpl{
		repo:      repo,
		uploadDir: uploadDir,
		maxSize:   maxSize,
		logger:    logger,
	}
}

// SanitizeFilename replaces everything outside [A-Za-z0-9.-] with an underscore.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

func (f *MediaFlowImpl) Upload(ctx context.Context, req *dto.UploadMediaRequest) (*dto.MediaDTO, error) {
	if req == nil || req.File == nil {
		return nil, NewBusinessError("FILE_REQUIRED", "File is required", ErrMediaFileRequired)
	}
	if req.FileSize > f.maxSize {
		return nil, NewBusinessErrorf("FILE_TOO_LARGE", "File size exceeds %d bytes", ErrMediaTooLarge, f.maxSize)
	}

	ext := strings.ToLower(filepath.Ext(req.OriginalFilename))
	expected, ok := allowedMediaTypes[ext]
	if !ok {
		return nil, NewBusinessError("INVALID_FILE_TYPE", "Allowed file types: jpg, jpeg, png, gif, webp", ErrUnsupportedMediaType)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(req.File, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, NewBusinessError("UPLOAD_FAILED", "Failed to read file", err)
	}
	head = head[:n]
	if detected := http.DetectContentType(head); detected != expected {
		return nil, NewBusinessError("INVALID_FILE_TYPE", "File content does not match its extension", ErrUnsupportedMediaType)
	}

	if err := os.MkdirAll(f.uploadDir, 0o755); err != nil {
		return nil, NewBusinessError("UPLOAD_FAILED", "Failed to prepare upload directory", err)
	}
	filename := fmt.Sprintf("%d-%s", utils.UTCNow().UnixMilli(), SanitizeFilename(req.OriginalFilename))
	fullPath := filepath.Join(f.uploadDir, filename)

	written, err := f.writeFile(fullPath, io.MultiReader(bytes.NewReader(head), req.File))
	if err != nil {
		return nil, err
	}

	media := &models.Media{
		Filename:         filename,
		OriginalFilename: req.OriginalFilename,
		URL:              MediaURLPrefix + filename,
		FileSize:         written,
		MimeType:         expected,
		UploadedAt:       utils.UTCNow(),
	}
	if req.UploadedBy != 0 {
		media.UploadedBy = &req.UploadedBy
	}
	if err := f.repo.Save(ctx, media); err != nil {
		_ = os.Remove(fullPath)
		return nil, NewBusinessError("UPLOAD_FAILED", "Failed to save media", err)
	}

	out := ToMediaDTO(*media)
	return &out, nil
}

func (f *MediaFlowImpl) writeFile(fullPath string, r io.Reader) (int64, error) {
	dst, err := os.Create(fullPath)
	if err != nil {
		return 0, NewBusinessError("UPLOAD_FAILED", "Failed to create file", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(r, f.maxSize+1))
	if err != nil {
		_ = os.Remove(fullPath)
		return 0, NewBusinessError("UPLOAD_FAILED", "Failed to write file", err)
	}
	if written > f.maxSize {
		_ = os.Remove(fullPath)
		return 0, NewBusinessErrorf("FILE_TOO_LARGE", "File size exceeds %d bytes", ErrMediaTooLarge, f.maxSize)
	}
	return written, nil
}

func (f *MediaFlowImpl) List(ctx context.Context, req dto.ListMediaRequest) (*dto.ListMediaResponse, error) {
	page, limit, offset := normalizePage(req.Page, req.Limit, mediaPageLimit)
	filter := models.MediaFilter{Search: searchPtr(req.Search)}

	total, err := f.repo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_MEDIA_FAILED", "Failed to count media", err)
	}
	rows, err := f.repo.ByFilter(ctx, filter, "uploaded_at DESC, id DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_MEDIA_FAILED", "Failed to list media", err)
	}

	items := make([]dto.MediaDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToMediaDTO(*row))
	}
	return &dto.ListMediaResponse{
		Media:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Delete removes the row; a file already gone from disk is only logged.
func (f *MediaFlowImpl) Delete(ctx context.Context, id uint) error {
	media, err := f.mustGet(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(f.pathOf(media)); err != nil {
		f.logger.Warn("media file could not be removed", zap.Uint("media_id", media.ID), zap.String("filename", media.Filename), zap.Error(err))
	}
	if err := f.repo.Delete(ctx, media.ID); err != nil {
		return NewBusinessError("DELETE_MEDIA_FAILED", "Failed to delete media", err)
	}
	return nil
}

func (f *MediaFlowImpl) Preview(ctx context.Context, id uint) (string, string, []byte, error) {
	media, err := f.mustGet(ctx, id)
	if err != nil {
		return "", "", nil, err
	}
	file, err := os.Open(f.pathOf(media))
	if err != nil {
		return "", "", nil, NewBusinessError("MEDIA_FILE_MISSING", "Media file is missing", ErrMediaNotFound)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", "", nil, NewBusinessError("PREVIEW_FAILED", "Failed to decode image", err)
	}

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, resizeImage(img, thumbnailMaxDim), &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return "", "", nil, NewBusinessError("PREVIEW_FAILED", "Failed to encode preview", err)
	}
	return "preview.jpg", "image/jpeg", buf.Bytes(), nil
}

func (f *MediaFlowImpl) mustGet(ctx context.Context, id uint) (*models.Media, error) {
	media, err := f.repo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("FETCH_MEDIA_FAILED", "Failed to fetch media", err)
	}
	if media == nil {
		return nil, NewBusinessError("MEDIA_NOT_FOUND", "Media not found", ErrMediaNotFound)
	}
	return media, nil
}

// pathOf only trusts the base name stored in the row.
func (f *MediaFlowImpl) pathOf(media *models.Media) string {
	return filepath.Join(f.uploadDir, filepath.Base(media.Filename))
}

// resizeImage fits src into maxDim x maxDim on a white background.
func resizeImage(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = max(1, int(float64(h)*float64(maxDim)/float64(w)))
	} else {
		nh = maxDim
		nw = max(1, int(float64(w)*float64(maxDim)/float64(h)))
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	imagedraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, imagedraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
