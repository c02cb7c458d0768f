package client

import (
	"net/url"
	"time"

	"github.com/formic/formic/formic/form"
	"github.com/formic/formic/formic/submission"
)

// FormPager walks through an admin's forms one page at a time.  A page
// shorter than the page size means there are no further pages, so the pager
// never issues a request past the end.
type FormPager struct {
	client  *Client
	adminID string
	skip    int
	limit   int
	done    bool
}

// Forms returns a pager over the admin's forms, newest first.
func (c *Client) Forms(adminID string, pageSize int) *FormPager {
	return &FormPager{client: c, adminID: adminID, limit: pageSize}
}

// HasMore reports whether another page may exist.
func (p *FormPager) HasMore() bool {
	return !p.done
}

// Next fetches the next page.  Returns an empty page once the pager is
// exhausted.
func (p *FormPager) Next() ([]form.Form, error) {
	if p.done {
		return nil, nil
	}
	query := pageQuery(url.Values{}, p.skip, p.limit)
	page := make([]form.Form, 0)
	if err := p.client.doJSON("GET", "/admin/"+p.adminID+"/forms?"+query, nil, &page); err != nil {
		return nil, err
	}
	p.skip += p.limit
	if len(page) < p.limit {
		p.done = true
	}
	return page, nil
}

// Filter narrows a submission browsing session.  Zero values put no
// constraint on the results.
type Filter struct {
	DateFrom         time.Time
	DateTo           time.Time
	UserName         string
	UserEmail        string
	FieldValueSearch string
	FormID           string
}

func (f Filter) query(values url.Values) {
	if !f.DateFrom.IsZero() {
		values.Set("date_from", f.DateFrom.Format(time.RFC3339))
	}
	if !f.DateTo.IsZero() {
		values.Set("date_to", f.DateTo.Format(time.RFC3339))
	}
	if f.UserName != "" {
		values.Set("user_name", f.UserName)
	}
	if f.UserEmail != "" {
		values.Set("user_email", f.UserEmail)
	}
	if f.FieldValueSearch != "" {
		values.Set("field_value_search", f.FieldValueSearch)
	}
	if f.FormID != "" {
		values.Set("form_id", f.FormID)
	}
}

// SubmissionPager walks through an admin's submissions across all their
// forms, narrowed by a filter.
type SubmissionPager struct {
	client  *Client
	adminID string
	filter  Filter
	skip    int
	limit   int
	done    bool
}

// Submissions returns a pager over the admin's submissions, newest first.
func (c *Client) Submissions(adminID string, filter Filter, pageSize int) *SubmissionPager {
	return &SubmissionPager{client: c, adminID: adminID, filter: filter, limit: pageSize}
}

// HasMore reports whether another page may exist.
func (p *SubmissionPager) HasMore() bool {
	return !p.done
}

// Next fetches the next page.  Returns an empty page once the pager is
// exhausted.
func (p *SubmissionPager) Next() ([]submission.Submission, error) {
	if p.done {
		return nil, nil
	}
	values := url.Values{}
	p.filter.query(values)
	query := pageQuery(values, p.skip, p.limit)
	page := make([]submission.Submission, 0)
	if err := p.client.doJSON("GET", "/admin/"+p.adminID+"/submissions?"+query, nil, &page); err != nil {
		return nil, err
	}
	p.skip += p.limit
	if len(page) < p.limit {
		p.done = true
	}
	return page, nil
}
