package forge

import "errors"

// Kind names why a step failed so callers can branch without parsing messages.
type Kind string

const (
	KindBuildFileNotFound     Kind = "build_file_not_found"
	KindNavigationFailed      Kind = "navigation_failed"
	KindLoginFormIncomplete   Kind = "login_form_incomplete"
	KindItemTableNotFound     Kind = "item_table_not_found"
	KindItemLinkNotFound      Kind = "item_link_not_found"
	KindDropzoneNotFound      Kind = "dropzone_not_found"
	KindSubmitNotFound        Kind = "submit_not_found"
	KindUploadToastError      Kind = "upload_toast_error"
	KindUploadRejected        Kind = "upload_rejected"
	KindUploadIncomplete      Kind = "upload_incomplete"
	KindChannelSelectNotFound Kind = "channel_select_not_found"
	KindChannelOptionNotFound Kind = "channel_option_not_found"
	KindItemsAPIFailed        Kind = "items_api_failed"
)

var (
	// ErrElementTimeout is returned by Page waits when the wait ceiling elapses.
	ErrElementTimeout = errors.New("element wait timed out")
	// ErrNoSuchOption is returned by Page.SelectOption when no option has the text.
	ErrNoSuchOption = errors.New("no option with that text")
	// ErrNoSuchElement is returned when a locator matches fewer elements than needed.
	ErrNoSuchElement = errors.New("no such element")
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf returns the failure kind carried by err, or "" when err is not a forge error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
