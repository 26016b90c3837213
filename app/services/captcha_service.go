package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wenlng/go-captcha/v2/rotate"
)

// CaptchaService exposes methods to generate and verify captchas
// This implementation uses the rotate captcha mode from go-captcha
// Reference: https://github.com/wenlng/go-captcha
//
// Flow:
// - Generate: returns a challenge ID and two base64 images (master and thumb)
// - Verify: validates a user-provided angle against the stored target angle with tolerance
// - Challenges live in a ChallengeStore (memory or redis) with TTL and are removed on verification
//
// Note: The frontend should render the images and capture the rotation angle that the user applies.
// On submit, send the angle along with the challenge ID for verification.
type CaptchaService interface {
	// GenerateRotate creates a rotate captcha challenge and returns the assets and challenge ID
	GenerateRotate(ctx context.Context) (*RotateChallenge, error)
	// VerifyRotate verifies the provided user angle for a given challenge ID
	VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool
}

type RotateChallenge struct {
	ID                string
	MasterImageBase64 string
	ThumbImageBase64  string
}

// ChallengeStore keeps the target angle of an issued challenge until it is consumed or expires.
type ChallengeStore interface {
	Put(ctx context.Context, id string, targetAngle int, ttl time.Duration) error
	// Take returns and removes the target angle. ok is false for unknown or expired ids.
	Take(ctx context.Context, id string) (targetAngle int, ok bool, err error)
}

type captchaServiceImpl struct {
	rotator   rotate.Captcha
	store     ChallengeStore
	ttl       time.Duration
	padding   int // tolerance for angle validation
	imgSizePx int // square size for rotate captcha images
}

// NewCaptchaServiceRotate constructs a CaptchaService using rotate mode
// ttl: time window during which a challenge remains valid
// padding: acceptable angle difference (degrees) when validating
// imgSizePx: square size for generated images (e.g., 220)
func NewCaptchaServiceRotate(store ChallengeStore, ttl time.Duration, padding int, imgSizePx int) (CaptchaService, error) {
	if store == nil {
		return nil, errors.New("captcha challenge store is required")
	}
	if imgSizePx <= 0 {
		imgSizePx = 220
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	// Build a rotator with a few programmatically generated background images
	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(generateRotateBackgrounds(3, imgSizePx)),
	)
	rotator := builder.Make()

	return &captchaServiceImpl{
		rotator:   rotator,
		store:     store,
		ttl:       ttl,
		padding:   padding,
		imgSizePx: imgSizePx,
	}, nil
}

func (s *captchaServiceImpl) GenerateRotate(ctx context.Context) (*RotateChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate rotate captcha: %w", err)
	}

	block := captData.GetData()
	if block == nil {
		return nil, errors.New("rotate captcha returned no block data")
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, err
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, err
	}

	challengeID := uuid.New().String()
	if err := s.store.Put(ctx, challengeID, block.Angle, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store captcha challenge: %w", err)
	}

	return &RotateChallenge{
		ID:                challengeID,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
	}, nil
}

func (s *captchaServiceImpl) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	// consumed on success or failure
	targetAngle, ok, err := s.store.Take(ctx, challengeID)
	if err != nil || !ok {
		return false
	}

	// Round user-provided angle to integer degrees expected by validator
	return rotate.Validate(int(math.Round(userAngle)), targetAngle, s.padding)
}

// --- In-memory store with TTL ---

type storeEntry struct {
	targetAngle int
	expiresAt   time.Time
}

// MemoryChallengeStore is the single-process ChallengeStore.
type MemoryChallengeStore struct {
	mu   sync.Mutex
	m    map[string]storeEntry
	done chan struct{}
	once sync.Once
}

// NewMemoryChallengeStore starts a store whose expired entries are swept every interval.
func NewMemoryChallengeStore(interval time.Duration) *MemoryChallengeStore {
	if interval <= 0 {
		interval = time.Minute
	}
	ms := &MemoryChallengeStore{
		m:    make(map[string]storeEntry),
		done: make(chan struct{}),
	}
	go ms.cleanupLoop(interval)
	return ms
}

func (s *MemoryChallengeStore) Put(_ context.Context, id string, targetAngle int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = storeEntry{targetAngle: targetAngle, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryChallengeStore) Take(_ context.Context, id string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return 0, false, nil
	}
	delete(s.m, id)
	if time.Now().After(e.expiresAt) {
		return 0, false, nil
	}
	return e.targetAngle, true, nil
}

// Close stops the cleanup goroutine.
func (s *MemoryChallengeStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryChallengeStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for k, v := range s.m {
				if now.After(v.expiresAt) {
					delete(s.m, k)
				}
			}
			s.mu.Unlock()
		}
	}
}

// --- Redis store, shared between instances ---

// RedisChallengeStore keeps challenges in redis with a native TTL.
type RedisChallengeStore struct {
	client *redis.Client
	prefix string
}

func NewRedisChallengeStore(client *redis.Client, prefix string) *RedisChallengeStore {
	return &RedisChallengeStore{client: client, prefix: prefix}
}

func (s *RedisChallengeStore) key(id string) string {
	return s.prefix + "captcha:" + id
}

func (s *RedisChallengeStore) Put(ctx context.Context, id string, targetAngle int, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(id), targetAngle, ttl).Err()
}

func (s *RedisChallengeStore) Take(ctx context.Context, id string) (int, bool, error) {
	val, err := s.client.GetDel(ctx, s.key(id)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// --- Utility: generate simple background images programmatically ---

func generateRotateBackgrounds(n int, size int) []image.Image {
	if n <= 0 {
		n = 1
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		imgs = append(imgs, newNoiseGradientImage(size, size))
	}
	return imgs
}

func newNoiseGradientImage(w, h int) image.Image {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	// Gradient background
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// simple radial gradient + noise
			dx := float64(x - w/2)
			dy := float64(y - h/2)
			dist := math.Sqrt(dx*dx + dy*dy)
			t := dist / float64(w/2)
			if t > 1 {
				t = 1
			}
			base := uint8(200 - int(150*t))
			noise := uint8(rand.Intn(30))
			rgba.Set(x, y, color.RGBA{R: base + noise/3, G: base, B: 255 - base/2, A: 255})
		}
	}
	// overlay a few rectangles
	drawRect(rgba, 10, 10, w/3, h/12, color.RGBA{R: 255, G: 255, B: 255, A: 32})
	drawRect(rgba, w/2, h/3, w/3, h/10, color.RGBA{R: 0, G: 0, B: 0, A: 24})
	return rgba
}

func drawRect(dst *image.RGBA, x, y, w, h int, c color.RGBA) {
	rect := image.Rect(x, y, x+w, y+h)
	draw.Draw(dst, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
}
