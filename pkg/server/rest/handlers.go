package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/graphtile/pkg/datastructure"
	"github.com/lintang-b-s/graphtile/pkg/graphtile"
	"github.com/lintang-b-s/graphtile/pkg/kv"
	"github.com/lintang-b-s/graphtile/pkg/util"
	"go.uber.org/zap"
)

type TileReader interface {
	GetGraphTile(ctx context.Context, id datastructure.GraphID) (*graphtile.GraphTile, error)
	TileIDs(ctx context.Context) ([]datastructure.GraphID, error)
}

type EdgeIndex interface {
	EdgesNear(ctx context.Context, lat, lon, radiusKm float64) ([]kv.EdgeRef, error)
}

type TileHandler struct {
	tiles    TileReader
	edges    EdgeIndex
	metrics  *Metrics
	validate *validator.Validate
	trans    ut.Translator
	log      *zap.Logger
}

// TilesRouter. edges may be nil when the tiles are served from plain files without an h3 index.
func TilesRouter(r *chi.Mux, tiles TileReader, edges EdgeIndex, m *Metrics, log *zap.Logger) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	validate := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &TileHandler{tiles: tiles, edges: edges, metrics: m, validate: validate, trans: trans, log: log}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Get("/version", handler.Version)
			r.Get("/tiles", handler.ListTiles)
			r.Get("/tiles/{level}/{tileID}", handler.TileHeader)
			r.Get("/tiles/{level}/{tileID}/edges/{edgeID}", handler.DirectedEdge)
			r.Get("/tiles/{level}/{tileID}/edges/{edgeID}/signs", handler.Signs)
			r.Get("/edges/nearby", handler.NearbyEdges)
		})
	})
}

// VersionResponse model info
//
//	@Description	record layouts this server reads
type VersionResponse struct {
	DirectedEdgeVersion string `json:"directed_edge_version"`
	DirectedEdgeSize    int    `json:"directed_edge_size"`
	SignVersion         string `json:"sign_version"`
	SignSize            int    `json:"sign_size"`
}

func (h *TileHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &VersionResponse{
		DirectedEdgeVersion: fmt.Sprintf("%016x", datastructure.DirectedEdgeInternalVersion()),
		DirectedEdgeSize:    datastructure.DirectedEdgeSize,
		SignVersion:         fmt.Sprintf("%016x", datastructure.SignInternalVersion()),
		SignSize:            datastructure.SignSize,
	})
}

type TileRef struct {
	GraphID string `json:"graph_id"`
	Level   uint32 `json:"level"`
	TileID  uint32 `json:"tile_id"`
}

func newTileRef(id datastructure.GraphID) TileRef {
	return TileRef{GraphID: id.String(), Level: id.Level(), TileID: id.TileID()}
}

func (h *TileHandler) ListTiles(w http.ResponseWriter, r *http.Request) {
	ids, err := h.tiles.TileIDs(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	refs := make([]TileRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, newTileRef(id))
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, refs)
}

// TileHeaderResponse model info
//
//	@Description	header of one tile
type TileHeaderResponse struct {
	TileRef
	EdgeLayoutVersion string `json:"edge_layout_version"`
	SignLayoutVersion string `json:"sign_layout_version"`
	DirectedEdgeCount uint32 `json:"directed_edge_count"`
	SignCount         uint32 `json:"sign_count"`
	Size              int    `json:"size"`
}

func (h *TileHandler) TileHeader(w http.ResponseWriter, r *http.Request) {
	id, err := pathGraphID(r, false)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	tile, err := h.tiles.GetGraphTile(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	hdr := tile.Header()
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &TileHeaderResponse{
		TileRef:           newTileRef(tile.ID()),
		EdgeLayoutVersion: fmt.Sprintf("%016x", hdr.EdgeLayoutVersion),
		SignLayoutVersion: fmt.Sprintf("%016x", hdr.SignLayoutVersion),
		DirectedEdgeCount: hdr.DirectedEdgeCount,
		SignCount:         hdr.SignCount,
		Size:              tile.Size(),
	})
}

type TurnSlot struct {
	LocalIdx    uint32  `json:"local_idx"`
	TurnType    string  `json:"turn_type"`
	EdgeToLeft  bool    `json:"edge_to_left"`
	EdgeToRight *bool   `json:"edge_to_right,omitempty"`
	StopImpact  *uint32 `json:"stop_impact,omitempty"`
}

// DirectedEdgeResponse model info
//
//	@Description	decoded directed edge with its shared edge info
type DirectedEdgeResponse struct {
	GraphID        string     `json:"graph_id"`
	EndNode        string     `json:"end_node"`
	WayID          uint64     `json:"way_id"`
	Names          []string   `json:"names"`
	Shape          string     `json:"shape"`
	Length         uint32     `json:"length"`
	Speed          uint32     `json:"speed"`
	SpeedType      string     `json:"speed_type"`
	Use            string     `json:"use"`
	Classification string     `json:"classification"`
	Surface        string     `json:"surface"`
	CycleLane      string     `json:"cycle_lane"`
	LaneCount      uint32     `json:"lane_count"`
	ForwardAccess  uint8      `json:"forward_access"`
	ReverseAccess  uint8      `json:"reverse_access"`
	Forward        bool       `json:"forward"`
	Toll           bool       `json:"toll"`
	Tunnel         bool       `json:"tunnel"`
	Bridge         bool       `json:"bridge"`
	Roundabout     bool       `json:"roundabout"`
	ExitSign       bool       `json:"exit_sign"`
	Shortcut       bool       `json:"shortcut"`
	LineID         *uint32    `json:"line_id,omitempty"`
	LocalEdgeIdx   uint32     `json:"local_edge_idx"`
	OppLocalIdx    uint32     `json:"opp_local_idx"`
	Turns          []TurnSlot `json:"turns"`
	Record         string     `json:"record"`
}

func (h *TileHandler) DirectedEdge(w http.ResponseWriter, r *http.Request) {
	id, err := pathGraphID(r, true)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	tile, err := h.tiles.GetGraphTile(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	e, err := tile.DirectedEdge(id.ID())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	info, err := tile.EdgeInfo(e.EdgeInfoOffset())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	names, err := tile.EdgeNames(e)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	shape, err := tile.EdgeShape(e)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, renderDirectedEdge(id, e, info.WayID, names, shape))
}

func renderDirectedEdge(id datastructure.GraphID, e datastructure.DirectedEdge, wayID uint64, names []string,
	shape []datastructure.Coordinate) *DirectedEdgeResponse {
	resp := &DirectedEdgeResponse{
		GraphID:        id.String(),
		EndNode:        e.EndNode().String(),
		WayID:          wayID,
		Names:          names,
		Shape:          datastructure.CreatePolyline(shape),
		Length:         e.Length(),
		Speed:          e.Speed(),
		SpeedType:      e.SpeedType().String(),
		Use:            e.Use().String(),
		Classification: e.Classification().String(),
		Surface:        e.Surface().String(),
		CycleLane:      e.CycleLane().String(),
		LaneCount:      e.LaneCount(),
		ForwardAccess:  uint8(e.ForwardAccess()),
		ReverseAccess:  uint8(e.ReverseAccess()),
		Forward:        e.Forward(),
		Toll:           e.Toll(),
		Tunnel:         e.Tunnel(),
		Bridge:         e.Bridge(),
		Roundabout:     e.Roundabout(),
		ExitSign:       e.ExitSign(),
		Shortcut:       e.IsShortcut(),
		LocalEdgeIdx:   e.LocalEdgeIdx(),
		OppLocalIdx:    e.OppLocalIdx(),
		Record:         fmt.Sprintf("%x", e.Serialize()),
	}

	transit := e.IsTransitLine()
	if transit {
		lineID := e.LineID()
		resp.LineID = &lineID
	}
	for i := uint32(0); i < datastructure.NumberOfEdgeTransitions; i++ {
		slot := TurnSlot{LocalIdx: i, TurnType: e.TurnType(i).String(), EdgeToLeft: e.EdgeToLeft(i)}
		if !transit {
			right, impact := e.EdgeToRight(i), e.StopImpact(i)
			slot.EdgeToRight, slot.StopImpact = &right, &impact
		}
		resp.Turns = append(resp.Turns, slot)
	}
	return resp
}

type SignResponse struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (h *TileHandler) Signs(w http.ResponseWriter, r *http.Request) {
	id, err := pathGraphID(r, true)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	tile, err := h.tiles.GetGraphTile(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	signs, err := tile.GetSigns(id.ID())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	resp := make([]SignResponse, 0, len(signs))
	for _, s := range signs {
		resp = append(resp, SignResponse{Type: s.Type.String(), Text: s.Text})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// NearbyEdgesRequest model info
//
//	@Description	query of /api/edges/nearby
// lat/lon are pointers so that 0 (equator, prime meridian) is told apart from a missing param.
type NearbyEdgesRequest struct {
	Lat    *float64 `validate:"required,gte=-90,lte=90"`
	Lon    *float64 `validate:"required,gte=-180,lte=180"`
	Radius float64  `validate:"gt=0,lte=5"`
}

type NearbyEdge struct {
	GraphID string  `json:"graph_id"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (h *TileHandler) NearbyEdges(w http.ResponseWriter, r *http.Request) {
	if h.edges == nil {
		render.Render(w, r, ErrNotFound(fmt.Errorf("no spatial edge index: %w", kv.ErrEdgesNotFound)))
		return
	}
	data := &NearbyEdgesRequest{Radius: 0.5}
	q := r.URL.Query()
	for _, name := range []string{"lat", "lon", "radius"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(fmt.Errorf("%s: %w", name, err)))
			return
		}
		switch name {
		case "lat":
			data.Lat = &v
		case "lon":
			data.Lon = &v
		default:
			data.Radius = v
		}
	}
	if err := h.validate.Struct(*data); err != nil {
		render.Render(w, r, ErrValidation(err, translateError(err, h.trans)))
		return
	}

	refs, err := h.edges.EdgesNear(r.Context(), *data.Lat, *data.Lon, data.Radius)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	resp := make([]NearbyEdge, 0, len(refs))
	for _, ref := range refs {
		resp = append(resp, NearbyEdge{
			GraphID: datastructure.GraphID(ref.GraphID).String(),
			Lat:     util.RoundFloat(ref.Lat, 6),
			Lon:     util.RoundFloat(ref.Lon, 6),
		})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func pathGraphID(r *http.Request, withEdge bool) (datastructure.GraphID, error) {
	params := []string{"level", "tileID"}
	if withEdge {
		params = append(params, "edgeID")
	}
	vals := make([]uint32, 3)
	for i, name := range params {
		v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
		if err != nil {
			return datastructure.InvalidGraphID, fmt.Errorf("%s: %v: %w", name, err, datastructure.ErrInvalidGraphID)
		}
		vals[i] = uint32(v)
	}
	return datastructure.NewGraphID(vals[1], vals[0], vals[2])
}
