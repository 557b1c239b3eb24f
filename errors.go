package productsheet

import "errors"

// Sentinel errors for library operations.
var (
	// Input validation.
	ErrEmptyProductName   = errors.New("Veuillez entrer un nom de produit")
	ErrInvalidProductName = errors.New("Le nom du produit contient des caractères invalides")

	// Generation.
	ErrNoWebhook        = errors.New("no webhook configured")
	ErrGenerationFailed = errors.New("Erreur lors de la génération")
	ErrMissingContent   = errors.New("Format de réponse invalide : pdfContent manquant")
	ErrNoSessionContent = errors.New("Aucune donnée trouvée. Veuillez générer une fiche.")

	// Editing.
	ErrUnknownBadge = errors.New("badge not selected")
	ErrBadgeNotSVG  = errors.New("badge image is not SVG")
	ErrOutOfRange   = errors.New("index out of range")

	// Export.
	ErrExportInProgress = errors.New("an export is already running")
	ErrRender           = errors.New("rendering failed")
	ErrCapture          = errors.New("capture failed")
	ErrAssemble         = errors.New("PDF assembly failed")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
	ErrPageLoad         = errors.New("failed to load page")

	ErrInternal = errors.New("internal error")
)

// unknownError is the message used when the server reports a failure
// without one.
const unknownError = "Erreur inconnue"
