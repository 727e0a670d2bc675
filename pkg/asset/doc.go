// Package asset resolves content-reference items to displayable previews.
//
// A content-reference item names an asset by id; the asset service turns
// that id into a display URL and a content type. This package provides:
//
//   - [Resolver]: the lookup contract, implemented over HTTP by [Client]
//   - [Cache]: an owned, explicitly merged store of resolved previews
//   - [DeriveView]: a pure filtered and paginated view over a [Cache]
//   - [Loader]: fire-and-forget fetching for every content-reference item
//
// Lookups never retry. Any failure means "no preview" for that one item and
// never blocks placement or other fetches.
//
// # Loading
//
//	loader := asset.NewLoader(client)
//	for res := range loader.Load(ctx, layout.Items) {
//	    editor.ApplyPreview(res.ItemID, res.Preview) // false for deleted items
//	}
package asset
