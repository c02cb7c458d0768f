package templates

// SubmitForm renders a form definition as a public submission page.  Each
// field is rendered according to its type's widget category; select options
// come pre-decoded in the template data.
const SubmitForm = `
{{ define "content" }}
			<div class="formic-form">
				<h1>{{ .form.Title }}</h1>
				{{ with .form.Description }}<p class="description">{{ . }}</p>{{ end }}
				<form action="/api/v1/forms/{{ .form.ID }}/submit" method="post" enctype="multipart/form-data">
					<div class="field required">
						<label for="user_name">Your name</label>
						<input id="user_name" name="user_name" required>
					</div>
					<div class="field">
						<label for="user_email">Your email</label>
						<input id="user_email" name="user_email" type="email">
					</div>
					{{ range .fields }}
						<div class="field {{ if .Field.IsRequired }}required{{ end }}">
							<label for="{{ .Field.ID }}">{{ .Field.Label }}</label>
							{{ if eq .Widget "textarea" }}
								<textarea id="{{ .Field.ID }}" name="field_{{ .Field.ID }}" placeholder="{{ .Field.Placeholder }}" {{ if .Field.IsRequired }}required{{ end }}></textarea>
							{{ else if eq .Widget "select" }}
								<select id="{{ .Field.ID }}" name="field_{{ .Field.ID }}" {{ if .Field.IsRequired }}required{{ end }}>
									{{ range .Options }}<option value="{{ . }}">{{ . }}</option>{{ end }}
								</select>
							{{ else if eq .Widget "multiselect" }}
								<select id="{{ .Field.ID }}" name="field_{{ .Field.ID }}" multiple {{ if .Field.IsRequired }}required{{ end }}>
									{{ range .Options }}<option value="{{ . }}">{{ . }}</option>{{ end }}
								</select>
							{{ else if eq .Widget "file" }}
								<input id="{{ .Field.ID }}" name="files" type="file" multiple {{ if .Field.IsRequired }}required{{ end }}>
							{{ else }}
								<input id="{{ .Field.ID }}" name="field_{{ .Field.ID }}" type="{{ .Widget }}" placeholder="{{ .Field.Placeholder }}" {{ if .Field.IsRequired }}required{{ end }}>
							{{ end }}
						</div>
					{{ end }}
					<div class="field">
						<button type="submit">Submit</button>
					</div>
				</form>
			</div>
{{ end }}
`
