package types

// Content is a discoverable panel bundle on disk.
type Content struct {
	// Panel name, the bundle's directory name.
	// example: terminal
	Name string `json:"name" example:"terminal"`
	// Absolute path to the bundle's index page.
	// example: /srv/panels/terminal/index.html
	Path string `json:"path" example:"/srv/panels/terminal/index.html"`
	// URL the renderer navigates to.
	// example: file:///srv/panels/terminal/index.html
	URL string `json:"url" example:"file:///srv/panels/terminal/index.html"`
}
