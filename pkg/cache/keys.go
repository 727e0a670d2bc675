package cache

// Key prefixes, also used as the keyType reported to cache hooks.
const (
	KeyTypeAsset  = "asset"
	KeyTypeRender = "render"
)

// Keyer builds cache keys for each kind of cached value.
type Keyer interface {
	// AssetKey identifies a preview lookup for one content reference on one
	// asset service.
	AssetKey(baseURL, refID string) string

	// RenderKey identifies rendered output for a layout document hash.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts lists the render settings that change the output.
type RenderKeyOpts struct {
	Format     string `json:"format"`
	Breakpoint string `json:"breakpoint"`
	GridLines  bool   `json:"grid_lines,omitempty"`
	Labels     bool   `json:"labels,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AssetKey returns "asset:<hash>" over the base URL and reference id.
func (DefaultKeyer) AssetKey(baseURL, refID string) string {
	return hashKey(KeyTypeAsset, baseURL, refID)
}

// RenderKey returns "render:<hash>" over the layout hash and options.
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey(KeyTypeRender, layoutHash, opts)
}
