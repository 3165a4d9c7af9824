package factory

import (
	"time"

	"github.com/mcoot/wordbomb/internal/dependencies/mocks"
	"github.com/mcoot/wordbomb/internal/services/game"
	"github.com/mcoot/wordbomb/internal/storage/memory"
	"github.com/mcoot/wordbomb/internal/testutil"
	"github.com/mcoot/wordbomb/internal/web/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(game.DefaultConfig())
}

// NewTestAppWithConfig creates a test App with custom game rules, e.g. a
// single-entry constraint catalog so turns are predictable
func NewTestAppWithConfig(gameCfg game.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, gameCfg, ws.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// TestWords is a small Spanish word list covering every default constraint
var TestWords = []string{
	// vowels
	"casa", "perro", "libro", "mesa", "luna", "fuego", "tierra", "agua", "cielo",
	// -AR -ER -IR -OR -UR
	"árbol", "arena", "carta", "barco", "verde", "perla", "tigre", "firma",
	"flor", "color", "norte", "curso", "turno", "murciélago",
	// blends
	"blanco", "tabla", "brazo", "cabra", "clase", "ancla", "crema", "lucro",
	"flauta", "rifle", "fresa", "cofre", "globo", "regla", "grano", "tigre",
	"plato", "cupla", "prado", "compra", "tren", "letra", "dragón", "ladrillo",
	// -ION -IA -IO -UE -UO
	"canción", "nación", "familia", "historia", "radio", "medio", "puerta",
	"nuevo", "cuota", "mutuo",
	// clusters
	"hombre", "tambor", "campo", "tiempo", "invierno", "envío", "enfermo", "confianza",
	// digraphs
	"noche", "chico", "llave", "calle", "carro", "perro",
	// Ñ
	"niño", "año", "montaña", "señal",
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() error {
	return t.DictionaryService.LoadWords(TestWords)
}
