package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"trykkeri-admin/app/controller"
	"trykkeri-admin/app/router"
	"trykkeri-admin/config"
	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/repository"
	"trykkeri-admin/service"
)

// Services bundles the application services. The CLI uses them without the HTTP layer.
type Services struct {
	Products service.ProductServiceInterface
	Pricing  service.PricingServiceInterface
	Assets   service.AssetServiceInterface
	Sync     service.SyncServiceInterface
	Download service.DownloadServiceInterface
	Invoices service.InvoiceServiceInterface
}

// NewServices builds repositories and services on an open database.
// Without Drive credentials the asset library works read-only.
func NewServices(ctx context.Context, cfg config.Config, conn *sql.DB) (*Services, error) {
	var driveService service.DriveServiceInterface
	if cfg.HasDrive() {
		ds, err := service.NewDriveService(ctx, cfg.GoogleCredentialsPath, cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, err
		}
		driveService = ds
	} else {
		logging.Warnf("⚠️  Google Drive credentials not set, asset uploads and sync are disabled")
	}

	cache, err := service.NewImageCache(cfg.ImageCacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}

	productRepo := repository.NewProductRepository(conn)
	attributeRepo := repository.NewAttributeRepository(conn)
	priceRepo := repository.NewPriceRepository(conn)
	templateRepo := repository.NewTemplateRepository(conn)
	designAssetRepo := repository.NewDesignAssetRepository(conn)
	invoiceRepo := repository.NewInvoiceRepository(conn)

	seller := service.InvoiceSettings{
		Name:    cfg.Invoice.SellerName,
		Address: cfg.Invoice.SellerAddress,
		VATNo:   cfg.Invoice.SellerVATNo,
		Bank: models.BankDetails{
			BankName: cfg.Invoice.BankName,
			RegNo:    cfg.Invoice.RegNo,
			Account:  cfg.Invoice.Account,
			IBAN:     cfg.Invoice.IBAN,
			SWIFT:    cfg.Invoice.SWIFT,
		},
		Currency:   cfg.Invoice.Currency,
		VATPercent: cfg.Invoice.VATPercent,
		DueDays:    cfg.Invoice.DueDays,
	}

	return &Services{
		Products: service.NewProductService(productRepo, attributeRepo),
		Pricing: service.NewPricingService(productRepo, attributeRepo, priceRepo, templateRepo, service.PricingDefaults{
			Rounding:     cfg.DefaultRounding,
			MasterMarkup: cfg.DefaultMasterMarkup,
		}),
		Assets:   service.NewAssetService(designAssetRepo, driveService, cfg.AssetFolderID, cfg.ThumbFolderID, cache),
		Sync:     service.NewSyncService(driveService, designAssetRepo),
		Download: service.NewDownloadService(driveService, designAssetRepo),
		Invoices: service.NewInvoiceService(invoiceRepo, service.NewChromePDFRenderer(cfg.ChromePath), seller),
	}, nil
}

// NewHandler wires the controllers into the admin router
func NewHandler(cfg config.Config, svc *Services) http.Handler {
	controllers := &router.Controllers{
		DesignAsset: controller.NewDesignAssetController(svc.Sync, svc.Assets, cfg.AssetFolderID),
		Download:    controller.NewDownloadController(svc.Download, cfg.DownloadDir),
		Product:     controller.NewProductController(svc.Products),
		Pricing:     controller.NewPricingController(svc.Pricing),
		Template:    controller.NewTemplateController(svc.Pricing),
		Invoice:     controller.NewInvoiceController(svc.Invoices),
	}
	return router.NewRouter(controllers)
}

// Initialize builds the application on an open database
func Initialize(ctx context.Context, cfg config.Config, conn *sql.DB) (http.Handler, error) {
	svc, err := NewServices(ctx, cfg, conn)
	if err != nil {
		return nil, err
	}
	logging.Infof("✓ Application initialized")
	return NewHandler(cfg, svc), nil
}
