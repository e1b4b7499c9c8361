package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kattn/djgenetics/internal/logger"
	"github.com/kattn/djgenetics/internal/middleware"
	"github.com/kattn/djgenetics/pkg/midifile"
	"github.com/kattn/djgenetics/pkg/pianoroll"
	"go.uber.org/zap"
)

// InstrumentSummary describes one instrument of an inspected file
type InstrumentSummary struct {
	Index   int     `json:"index"`
	Name    string  `json:"name"`
	Program uint8   `json:"program"`
	Channel uint8   `json:"channel"`
	IsDrum  bool    `json:"is_drum"`
	Track   int     `json:"track"`
	Notes   int     `json:"notes"`
	EndTime float64 `json:"end_time"`
}

// InspectResponse lists the instruments of an uploaded MIDI file
type InspectResponse struct {
	Resolution  uint16              `json:"resolution"`
	EndTime     float64             `json:"end_time"`
	Instruments []InstrumentSummary `json:"instruments"`
}

// NotesResponse is the note list of an encoded roll
type NotesResponse struct {
	FS    float64          `json:"fs"`
	Count int              `json:"count"`
	Notes []pianoroll.Note `json:"notes"`
}

// InspectMIDI lists the instruments of an uploaded MIDI file
// POST /api/v1/midi/inspect (multipart field "file")
func (h *Handlers) InspectMIDI(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	start := time.Now()
	f, err := midifile.Parse(data)
	middleware.RecordConversion("inspect", time.Since(start), err)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := InspectResponse{
		Resolution:  f.Resolution,
		EndTime:     f.EndTime(),
		Instruments: make([]InstrumentSummary, 0, len(f.Instruments)),
	}
	for i, inst := range f.Instruments {
		resp.Instruments = append(resp.Instruments, InstrumentSummary{
			Index:   i,
			Name:    inst.Name,
			Program: inst.Program,
			Channel: inst.Channel,
			IsDrum:  inst.IsDrum,
			Track:   inst.Track,
			Notes:   len(inst.Notes),
			EndTime: inst.EndTime(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// DecodeRoll samples one instrument of an uploaded MIDI file into a roll
// document
// POST /api/v1/rolls/decode?instrument=&fs= (multipart field "file")
func (h *Handlers) DecodeRoll(c *gin.Context) {
	instrument, err := strconv.Atoi(c.DefaultQuery("instrument", "0"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidParameter, "instrument must be an integer")
		return
	}
	fs, ok := h.sampleRate(c)
	if !ok {
		return
	}
	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	start := time.Now()
	m, err := h.decode(data, instrument, fs)
	middleware.RecordConversion("decode", time.Since(start), err)
	if err != nil {
		respondWithError(c, err)
		return
	}
	middleware.RecordRollSteps(m.Steps())

	logger.Log.Debug("roll decoded",
		logger.WithRequestID(middleware.RequestID(c)),
		logger.WithInstrument(instrument),
		logger.WithSampleRate(fs),
		zap.Int("steps", m.Steps()),
	)
	c.JSON(http.StatusOK, pianoroll.NewDocument(m, fs))
}

// RollNotes returns the notes encoded from a roll document
// POST /api/v1/rolls/notes?merge_velocity_changes=
func (h *Handlers) RollNotes(c *gin.Context) {
	doc, m, ok := h.readRoll(c)
	if !ok {
		return
	}
	enc, ok := encodeOptions(c)
	if !ok {
		return
	}

	start := time.Now()
	notes, err := pianoroll.EncodeWithOptions(m, doc.FS, enc)
	middleware.RecordConversion("notes", time.Since(start), err)
	if err != nil {
		respondWithError(c, err)
		return
	}
	middleware.RecordNotesEncoded(len(notes))

	c.JSON(http.StatusOK, NotesResponse{FS: doc.FS, Count: len(notes), Notes: notes})
}

// EncodeRoll converts a roll document to a MIDI file attachment
// POST /api/v1/rolls/encode?program=&name=&merge_velocity_changes=
func (h *Handlers) EncodeRoll(c *gin.Context) {
	program := h.cfg.Program
	if raw := c.Query("program"); raw != "" {
		p, err := strconv.ParseUint(raw, 10, 8)
		if err != nil || p > 127 {
			respondError(c, http.StatusBadRequest, CodeInvalidParameter, "program must be between 0 and 127")
			return
		}
		program = uint8(p)
	}
	name := c.DefaultQuery("name", "roll")

	doc, m, ok := h.readRoll(c)
	if !ok {
		return
	}
	enc, ok := encodeOptions(c)
	if !ok {
		return
	}

	start := time.Now()
	data, err := midifile.Encode(m, doc.FS, enc, midifile.WriteOptions{
		Program:    midifile.Program(program),
		Name:       name,
		Resolution: h.cfg.Resolution,
	})
	middleware.RecordConversion("encode", time.Since(start), err)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.mid"`, safeFilename(name)))
	c.Data(http.StatusOK, "audio/midi", data)
}

// decode samples an instrument after checking the roll fits MaxSteps
func (h *Handlers) decode(data []byte, instrument int, fs float64) (*pianoroll.Matrix, error) {
	f, err := midifile.Parse(data)
	if err != nil {
		return nil, err
	}
	inst, err := f.Instrument(instrument)
	if err != nil {
		return nil, err
	}
	if err := pianoroll.CheckSteps(inst.EndTime(), fs, h.cfg.MaxSteps); err != nil {
		return nil, err
	}
	return inst.PianoRoll(fs)
}

// sampleRate reads the fs query parameter
func (h *Handlers) sampleRate(c *gin.Context) (float64, bool) {
	raw := c.Query("fs")
	if raw == "" {
		return h.cfg.FS, true
	}
	fs, err := strconv.ParseFloat(raw, 64)
	if err != nil || !pianoroll.ValidSampleRate(fs) {
		respondError(c, http.StatusBadRequest, CodeInvalidSampleRate, pianoroll.ErrInvalidSampleRate.Error())
		return 0, false
	}
	return fs, true
}

func encodeOptions(c *gin.Context) (pianoroll.EncodeOptions, bool) {
	var opts pianoroll.EncodeOptions
	if raw := c.Query("merge_velocity_changes"); raw != "" {
		merge, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, CodeInvalidParameter, "merge_velocity_changes must be a boolean")
			return opts, false
		}
		opts.MergeVelocityChanges = merge
	}
	return opts, true
}

// readUpload returns the bytes of the multipart field "file"
func (h *Handlers) readUpload(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidFile, "multipart field 'file' is required")
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidFile, "failed to open upload")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidFile, "failed to read upload")
		return nil, false
	}
	return data, true
}

// readRoll decodes the request body as a JSON, or YAML by content type,
// roll document
func (h *Handlers) readRoll(c *gin.Context) (*pianoroll.Document, *pianoroll.Matrix, bool) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	var (
		doc *pianoroll.Document
		err error
	)
	if strings.Contains(c.ContentType(), "yaml") {
		doc, err = pianoroll.ReadYAMLDocument(body)
	} else {
		doc, err = pianoroll.ReadDocument(body)
	}
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRoll, err.Error())
		return nil, nil, false
	}

	m, err := doc.Matrix()
	if err != nil {
		respondWithError(c, err)
		return nil, nil, false
	}
	return doc, m, true
}

// safeFilename keeps letters, digits, dashes and underscores
func safeFilename(name string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if s == "" {
		return "roll"
	}
	return s
}
