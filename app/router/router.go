package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"trykkeri-admin/app/controller"
	"trykkeri-admin/logging"
)

type Controllers struct {
	DesignAsset *controller.DesignAssetController
	Download    *controller.DownloadController
	Product     *controller.ProductController
	Pricing     *controller.PricingController
	Template    *controller.TemplateController
	Invoice     *controller.InvoiceController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs one line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}

// NewRouter builds the admin API
func NewRouter(c *Controllers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/ping", pingHandler)

	r.Route("/admin", func(r chi.Router) {
		// Design asset library
		r.Route("/design-assets", func(r chi.Router) {
			r.Get("/", c.DesignAsset.List)
			r.Post("/", c.DesignAsset.Upload)
			r.Post("/sync", c.DesignAsset.Sync)
			r.Post("/download", c.Download.DownloadImages)
			r.Get("/{id}", c.DesignAsset.Get)
			r.Put("/{id}", c.DesignAsset.Update)
			r.Delete("/{id}", c.DesignAsset.Deactivate)
			r.Get("/{id}/image", c.DesignAsset.GetOptimizedImage)
		})

		// Products, attribute groups and values
		r.Get("/products", c.Product.ListProducts)
		r.Post("/products", c.Product.CreateProduct)
		r.Route("/products/{productID}", func(r chi.Router) {
			r.Get("/", c.Product.GetProduct)
			r.Get("/groups", c.Product.ListGroups)
			r.Post("/groups", c.Product.CreateGroup)

			// Price matrix editor
			r.Get("/pricing", c.Pricing.GetState)
			r.Post("/pricing/actions", c.Pricing.ApplyActions)
			r.Post("/pricing/preview", c.Pricing.Preview)
			r.Post("/pricing/quote", c.Pricing.Quote)
			r.Post("/pricing/import", c.Pricing.Import)
			r.Get("/pricing/export", c.Pricing.Export)
			r.Post("/pricing/export", c.Pricing.Export)
			r.Post("/pricing/publish", c.Pricing.Publish)

			r.Post("/templates", c.Template.Save)
			r.Post("/templates/{templateID}/apply", c.Template.Apply)
		})
		r.Delete("/groups/{groupID}", c.Product.DeleteGroup)
		r.Post("/groups/{groupID}/values", c.Product.CreateValue)
		r.Put("/groups/{groupID}/values/{valueID}", c.Product.UpdateValue)
		r.Delete("/groups/{groupID}/values/{valueID}", c.Product.DeleteValue)

		r.Post("/pricing/interpolate", c.Pricing.Interpolate)

		// Template bank
		r.Get("/templates", c.Template.List)
		r.Delete("/templates/{templateID}", c.Template.Delete)

		// Invoices
		r.Get("/invoices", c.Invoice.List)
		r.Post("/invoices", c.Invoice.Create)
		r.Get("/invoices/{id}", c.Invoice.Get)
		r.Post("/invoices/{id}/paid", c.Invoice.MarkPaid)
		r.Get("/invoices/{id}/html", c.Invoice.RenderHTML)
		r.Get("/invoices/{id}/pdf", c.Invoice.GeneratePDF)
	})

	return r
}
