package components

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

const (
	buttonBase  = "inline-flex items-center justify-center rounded-md px-3 py-2 text-sm font-medium transition-colors disabled:opacity-50"
	inputBase   = "block w-full rounded-md border border-gray-300 bg-white px-3 py-2 text-sm"
	labelBase   = "block text-sm font-medium text-gray-700"
	previewBase = "mx-auto block h-auto max-w-full rounded-lg border border-gray-200 bg-white"
)

// ButtonVariant picks the color scheme of a button.
type ButtonVariant string

const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonSecondary ButtonVariant = "secondary"
	ButtonGhost     ButtonVariant = "ghost"
)

var buttonVariants = map[ButtonVariant]string{
	ButtonPrimary:   "bg-gray-900 text-white hover:bg-gray-700",
	ButtonSecondary: "bg-gray-100 text-gray-900 hover:bg-gray-200",
	ButtonGhost:     "bg-transparent text-gray-700 hover:bg-gray-100 px-2",
}

// ButtonClass returns the classes of a button, with extra overriding the
// defaults.
func ButtonClass(v ButtonVariant, extra ...string) string {
	return twmerge.Merge(append([]string{buttonBase, buttonVariants[v]}, extra...)...)
}

// InputClass returns the classes of a text, number or select input.
func InputClass(extra ...string) string {
	return twmerge.Merge(append([]string{inputBase}, extra...)...)
}

// LabelClass returns the classes of a form label.
func LabelClass(extra ...string) string {
	return twmerge.Merge(append([]string{labelBase}, extra...)...)
}

// PreviewClass returns the classes of the preview image.
func PreviewClass(extra ...string) string {
	return twmerge.Merge(append([]string{previewBase}, extra...)...)
}
