package components

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// Variant is the severity of a toast.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
)

// ParseVariant maps a form value to a Variant. Unknown values are success.
func ParseVariant(s string) Variant {
	switch s {
	case "error", "destructive":
		return VariantError
	case "warning":
		return VariantWarning
	case "info":
		return VariantInfo
	}
	return VariantSuccess
}

// ToastProps configures Toast. Duration is in milliseconds, 0 keeps the toast
// until dismissed.
type ToastProps struct {
	Title       string
	Description string
	Variant     Variant
	Duration    int
	Dismissible bool
}

var toastVariants = map[Variant]string{
	VariantSuccess: "border-green-200 bg-green-50 text-green-900",
	VariantError:   "border-red-200 bg-red-50 text-red-900",
	VariantWarning: "border-amber-200 bg-amber-50 text-amber-900",
	VariantInfo:    "border-blue-200 bg-blue-50 text-blue-900",
}

func variantOr(v Variant) Variant {
	if v == "" {
		return VariantSuccess
	}
	return v
}

func toastClass(v Variant) string {
	return twmerge.Merge("pointer-events-auto flex w-80 items-start rounded-md border p-3 shadow-lg", toastVariants[variantOr(v)])
}

func toastRole(v Variant) string {
	if v == VariantError {
		return "alert"
	}
	return "status"
}
