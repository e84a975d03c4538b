package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"trykkeri-admin/db"
	"trykkeri-admin/models"
	"trykkeri-admin/pricing"
	"trykkeri-admin/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.Migrate(ctx, conn, "sqlite"); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

// fakeDrive keeps uploaded blobs in memory
type fakeDrive struct {
	mu      sync.Mutex
	files   map[string][]byte
	listing []models.StoredFile
	uploads []models.StoredFile
	seq     int
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{files: map[string][]byte{}}
}

func (d *fakeDrive) ListFiles(ctx context.Context, folderID string) ([]models.StoredFile, error) {
	return d.listing, nil
}

func (d *fakeDrive) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	return data, nil
}

func (d *fakeDrive) UploadFile(ctx context.Context, folderID, name, mimeType string, data []byte) (*models.StoredFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	id := fmt.Sprintf("file-%d", d.seq)
	d.files[id] = data
	f := models.StoredFile{ID: id, Name: name, MimeType: mimeType, URL: d.PublicURL(id)}
	d.uploads = append(d.uploads, f)
	return &f, nil
}

func (d *fakeDrive) PublicURL(fileID string) string {
	return "https://blobs.test/" + fileID
}

var _ DriveServiceInterface = (*fakeDrive)(nil)

// fakeRenderer records the HTML it was asked to print
type fakeRenderer struct {
	html string
}

func (r *fakeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	r.html = html
	return []byte("%PDF-1.4 fake"), nil
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 120, B: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// pricingFixture is a flyer product with a format axis (A4, A5) and one paper (135g)
type pricingFixture struct {
	conn     *sql.DB
	products *ProductService
	pricing  *PricingService
	product  *models.Product
	format   *models.AttributeGroup
	paper    *models.AttributeGroup
}

func newPricingFixture(t *testing.T) pricingFixture {
	t.Helper()
	ctx := context.Background()
	conn := newTestDB(t)

	productRepo := repository.NewProductRepository(conn)
	attributeRepo := repository.NewAttributeRepository(conn)
	f := pricingFixture{
		conn:     conn,
		products: NewProductService(productRepo, attributeRepo),
		pricing: NewPricingService(productRepo, attributeRepo,
			repository.NewPriceRepository(conn), repository.NewTemplateRepository(conn),
			PricingDefaults{Rounding: 1}),
	}

	var err error
	if f.product, err = f.products.CreateProduct(ctx, "Flyers", "", ""); err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if f.format, err = f.products.CreateGroup(ctx, f.product.ID, models.CreateAttributeGroupRequest{Name: "Format", Kind: "format"}); err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	if f.paper, err = f.products.CreateGroup(ctx, f.product.ID, models.CreateAttributeGroupRequest{Name: "Papir", Kind: "material", SortOrder: 1}); err != nil {
		t.Fatalf("CreateGroup returned error: %v", err)
	}
	for _, v := range []struct{ group, id, name string }{
		{f.format.ID, "fmt-a4", "A4"},
		{f.format.ID, "fmt-a5", "A5"},
		{f.paper.ID, "mat-135", "135g"},
	} {
		if _, err := f.products.UpsertValue(ctx, v.group, v.id, models.UpsertAttributeValueRequest{Name: v.name}); err != nil {
			t.Fatalf("UpsertValue(%s) returned error: %v", v.name, err)
		}
	}

	clock := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.pricing.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return f
}

func (f pricingFixture) structure() pricing.PricingStructure {
	return pricing.PricingStructure{
		Version:      pricing.LayoutVersion,
		VerticalAxis: pricing.VerticalAxis{GroupID: f.format.ID, Kind: models.GroupKindFormat},
		LayoutRows: []pricing.LayoutRow{{
			ID:       "row-1",
			Sections: []pricing.LayoutSection{{ID: "sec-paper", GroupID: f.paper.ID, Kind: models.GroupKindMaterial}},
		}},
		Quantities: []int{100, 500},
	}
}

var a4Paper = pricing.Context{FormatID: "fmt-a4", MaterialID: "mat-135"}

func nearlyEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
