package output

import (
	"context"
)

// NativeElement is a driver-side element reference. It is owned by the
// driver session and only meaningful to the driver that produced it.
type NativeElement any

// DriverPort is the narrow contract the locator core needs from a driver.
// A nil scope means the document root.
type DriverPort interface {
	FindElements(ctx context.Context, scope NativeElement, xpath string) ([]NativeElement, error)
	Attribute(ctx context.Context, el NativeElement, name string) (value string, ok bool, err error)
	TagName(ctx context.Context, el NativeElement) (string, error)
	// Probe returns an error wrapping entity.ErrStaleElement when el is
	// no longer attached to the document.
	Probe(ctx context.Context, el NativeElement) error

	Displayed(ctx context.Context, el NativeElement) (bool, error)
	Enabled(ctx context.Context, el NativeElement) (bool, error)
	Text(ctx context.Context, el NativeElement) (string, error)
	Value(ctx context.Context, el NativeElement) (string, error)
}

// ActionPort holds the element actions layered on top of location.
type ActionPort interface {
	Click(ctx context.Context, el NativeElement) error
	SendKeys(ctx context.Context, el NativeElement, text string) error
	Clear(ctx context.Context, el NativeElement) error
	Screenshot(ctx context.Context, el NativeElement) ([]byte, error)
}

// BrowserPort is a full driver session.
type BrowserPort interface {
	DriverPort
	ActionPort

	Navigate(ctx context.Context, url string) error
	CurrentURL() string
	Close()
}
