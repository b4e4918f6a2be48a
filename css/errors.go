package css

import "errors"

var (
	// ErrSelectorSyntax is returned for malformed selector text.
	ErrSelectorSyntax = errors.New("invalid selector syntax")
	// ErrUnsupportedSelector is returned by ParseSelector for valid CSS it
	// does not model (sibling combinators, groups, pseudo-elements). Such
	// selectors may still be used through RawSelector.
	ErrUnsupportedSelector = errors.New("unsupported selector")
	// ErrDegenerateSelector is returned for selectors naming no tag, id or class.
	ErrDegenerateSelector = errors.New("selector does not select anything")
	// ErrUnknownName is returned when looking up a style name never registered.
	ErrUnknownName = errors.New("unknown style name")
	// ErrMissingAnimation is returned when rendering a style referencing an
	// animation which is not registered with the stylesheet.
	ErrMissingAnimation = errors.New("animation is not registered")
	// ErrDuplicateAnimation is returned when registering a different animation
	// under an already used name.
	ErrDuplicateAnimation = errors.New("animation name already registered")
)
