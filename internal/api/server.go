// Package api exposes the import pipeline over HTTP for upload-based
// clients. Statement files arrive as multipart form uploads and are run
// through the same batch importer the CLI uses.
package api

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

// Server wires the fiber app to the import service.
type Server struct {
	app      *fiber.App
	importer *importer.Service
	store    *store.CSVStore
	log      *slog.Logger
}

// NewServer builds the HTTP server and registers routes.
func NewServer(svc *importer.Service, st *store.CSVStore, log *slog.Logger) *Server {
	s := &Server{
		app:      fiber.New(fiber.Config{BodyLimit: 32 << 20}),
		importer: svc,
		store:    st,
		log:      log,
	}

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/api/accounts", s.handleAccounts)
	s.app.Post("/api/accounts/:id/import", s.handleImport)

	return s
}

// Listen blocks serving HTTP on addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleAccounts(c *fiber.Ctx) error {
	accounts, err := s.store.Accounts()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	out := make([]fiber.Map, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, fiber.Map{
			"id":      a.ID,
			"name":    a.Name,
			"bank":    a.Bank,
			"balance": a.CurrentBalance.StringFixed(2),
		})
	}
	return c.JSON(out)
}

func (s *Server) handleImport(c *fiber.Ctx) error {
	accountID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected multipart form upload")
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no files uploaded, use form field 'files'")
	}

	files := make([]importer.File, 0, len(uploads))
	for _, upload := range uploads {
		f, err := upload.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("opening %s: %v", upload.Filename, err))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("reading %s: %v", upload.Filename, err))
		}
		files = append(files, importer.File{Name: upload.Filename, Data: data})
	}

	result, err := s.importer.ImportBatch(accountID, files, nil)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	fileResults := make([]fiber.Map, 0, len(result.Files))
	for _, f := range result.Files {
		fr := fiber.Map{
			"file":       f.FileName,
			"state":      string(f.State),
			"parsed":     f.Parsed,
			"imported":   f.Imported,
			"duplicates": f.Duplicates,
		}
		if f.Error != "" {
			fr["error"] = f.Error
		}
		fileResults = append(fileResults, fr)
	}

	return c.JSON(fiber.Map{
		"successfulFiles": result.SuccessfulFiles,
		"failedFiles":     result.FailedFiles,
		"totalImported":   result.TotalImported,
		"totalDuplicates": result.TotalDuplicates,
		"balance":         result.FinalBalance.StringFixed(2),
		"files":           fileResults,
	})
}
