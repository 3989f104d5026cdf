package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	AppName        string `json:"AppName"`

	LogoURL    string `json:"LogoURL"`
	SupportURL string `json:"SupportURL"`
	OrdersURL  string `json:"OrdersURL"`

	Time   string    `json:"Time"`
	TimeAt time.Time `json:"TimeAt"`

	// Order emails
	OrderID       string      `json:"OrderID"`
	Items         []OrderLine `json:"Items"`
	Total         string      `json:"Total"`
	Currency      string      `json:"Currency"`
	PaymentMethod string      `json:"PaymentMethod"`
	Status        string      `json:"Status"`
	ShipTo        string      `json:"ShipTo"`
}

// OrderLine is a preformatted order item row.
type OrderLine struct {
	Name      string `json:"Name"`
	Quantity  int    `json:"Quantity"`
	UnitPrice string `json:"UnitPrice"`
	LineTotal string `json:"LineTotal"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn backs {{ .Value | default "Fallback" }}.
func defaultFn(fallback, value any) any {
	if value == nil {
		return fallback
	}
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	}
	if reflect.ValueOf(value).IsZero() {
		return fallback
	}
	return value
}

func funcs() map[string]any {
	return map[string]any{
		"now":     func() time.Time { return time.Now().UTC() },
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

const (
	Welcome           = "welcome"
	OrderConfirmation = "order_confirmation"
	OrderCancelled    = "order_cancelled"
)

var names = []string{Welcome, OrderConfirmation, OrderCancelled}

// set is one email's parsed subject, text and html parts.
type set struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var (
	loadOnce sync.Once
	sets     map[string]*set
	loadErr  error
)

// load parses every embedded template once.
func load() (map[string]*set, error) {
	loadOnce.Do(func() {
		out := make(map[string]*set, len(names))
		for _, name := range names {
			s, err := parseSet(name)
			if err != nil {
				loadErr = err
				return
			}
			out[name] = s
		}
		sets = out
	})
	return sets, loadErr
}

func parseSet(name string) (*set, error) {
	parseText := func(file string) (*texttpl.Template, error) {
		t, err := texttpl.New(file).Funcs(funcs()).ParseFS(FS, file)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", file, err)
		}
		return t, nil
	}
	subject, err := parseText(name + ".subject.tmpl")
	if err != nil {
		return nil, err
	}
	text, err := parseText(name + ".text.tmpl")
	if err != nil {
		return nil, err
	}
	file := name + ".html.tmpl"
	html, err := htmpl.New(file).Funcs(funcs()).ParseFS(FS, file)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", file, err)
	}
	return &set{subject: subject, text: text, html: html}, nil
}

// Known reports whether name has a template set.
func Known(name string) bool {
	all, err := load()
	if err != nil {
		return false
	}
	_, ok := all[name]
	return ok
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func execute(t executor, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render produces the subject, text and html bodies for the named email.
func Render(name string, data any) (subject, text, html string, err error) {
	all, err := load()
	if err != nil {
		return "", "", "", err
	}
	s, ok := all[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = execute(s.subject, name+".subject", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(s.text, name+".text", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(s.html, name+".html", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
