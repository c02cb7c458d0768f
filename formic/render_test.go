package formic

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func collectNodes(node *html.Node, tag string, found *[]*html.Node) {
	if node.Type == html.ElementNode && node.Data == tag {
		*found = append(*found, node)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectNodes(child, tag, found)
	}
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestRenderSubmitPage(t *testing.T) {
	srv := testService(t)
	_, token := approvedAdmin(t, srv, "owner@example.com")
	frm := createForm(t, srv, token)

	req := httptest.NewRequest("GET", "/submit/"+frm.ID, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("submit page returned %d: %s", w.Code, w.Body.String())
	}

	doc, err := html.Parse(w.Body)
	if err != nil {
		t.Fatalf("rendered page is not parseable HTML: %v", err)
	}

	forms := make([]*html.Node, 0)
	collectNodes(doc, "form", &forms)
	if len(forms) != 1 {
		t.Fatalf("page contains %d form elements, expected 1", len(forms))
	}
	action := attr(forms[0], "action")
	if !strings.HasSuffix(action, "/forms/"+frm.ID+"/submit") {
		t.Errorf("form posts to %q", action)
	}
	if attr(forms[0], "enctype") != "multipart/form-data" {
		t.Error("form must post multipart data")
	}

	inputs := make([]*html.Node, 0)
	collectNodes(doc, "input", &inputs)
	names := make(map[string]bool)
	for _, in := range inputs {
		names[attr(in, "name")] = true
	}
	if !names["user_name"] || !names["user_email"] {
		t.Errorf("submitter inputs missing, got %v", names)
	}
	// the text and email fields render as inputs keyed by field ID
	if !names["field_"+frm.Fields[0].ID] {
		t.Errorf("input for field %s missing", frm.Fields[0].ID)
	}

	// the select field renders its decoded options
	selects := make([]*html.Node, 0)
	collectNodes(doc, "select", &selects)
	if len(selects) != 1 {
		t.Fatalf("page contains %d select elements, expected 1", len(selects))
	}
	options := make([]*html.Node, 0)
	collectNodes(selects[0], "option", &options)
	if len(options) != 3 {
		t.Errorf("select has %d options, expected 3", len(options))
	}
}

func TestRenderSubmitPageMissingForm(t *testing.T) {
	srv := testService(t)
	req := httptest.NewRequest("GET", "/submit/does-not-exist", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing form page returned %d, expected 404", w.Code)
	}
}
