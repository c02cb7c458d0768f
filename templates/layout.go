package templates

// Layout is the main site template for the public submission pages.  It
// includes the header and footer and embeds the content for every page.
var Layout = `
{{ define "layout" }}
<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<link rel="stylesheet" href="/assets/formic.css">
		<title>{{ .title }}</title>
	</head>
	<body>
		<div class="full height">
			{{ template "content" . }}
		</div>
		<footer>
			<div class="footertext">
				Powered by formic
			</div>
		</footer>
	</body>
</html>
{{ end }}
`
