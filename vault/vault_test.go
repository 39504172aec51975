package vault

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/illarion/svault/codec"
	"github.com/illarion/svault/internal/format"
)

// Low-cost Argon2 params so tests run in milliseconds.
const (
	testMemory      = 8
	testTime        = 1
	testParallelism = 1
)

type testData struct {
	Name     string   `json:"name" yaml:"name"`
	Value    uint64   `json:"value" yaml:"value"`
	Tags     []string `json:"tags" yaml:"tags"`
	Optional *string  `json:"optional" yaml:"optional"`
}

func sample() testData {
	note := "note"
	return testData{
		Name:     "GitHub perso",
		Value:    42,
		Tags:     []string{"work", "git"},
		Optional: &note,
	}
}

func vaultAt(t *testing.T, dir, password string, opts ...Option) *Vault {
	t.Helper()
	opts = append([]Option{WithParams(testMemory, testTime, testParallelism)}, opts...)
	v := Open(filepath.Join(dir, "vault.svlt"), password, opts...)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestRoundTrip(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "correct-horse-battery")
	data := sample()

	require.NoError(t, v.Save(data))

	var loaded testData
	require.NoError(t, v.Load(&loaded))
	assert.Equal(t, data, loaded)
}

func TestRoundTrip_OptionalNil(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")
	data := sample()
	data.Optional = nil

	require.NoError(t, v.Save(data))

	loaded, err := LoadAs[testData](v)
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
}

func TestRoundTrip_Values(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"string", "api-key-12345"},
		{"number", 3.5},
		{"map", map[string]any{"a": "b", "n": 1.0}},
		{"list", []any{"x", true, nil}},
		{"null", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := vaultAt(t, t.TempDir(), "pwd")
			require.NoError(t, v.Save(tt.value))

			var got any
			require.NoError(t, v.Load(&got))
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestRoundTrip_EmptyPassword(t *testing.T) {
	dir := t.TempDir()
	v := vaultAt(t, dir, "")
	require.NoError(t, v.Save(sample()))

	loaded, err := LoadAs[testData](v)
	require.NoError(t, err)
	assert.Equal(t, sample(), loaded)

	_, err = LoadAs[testData](vaultAt(t, dir, "not-empty"))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestRoundTrip_YAMLCodec(t *testing.T) {
	dir := t.TempDir()
	v := vaultAt(t, dir, "pwd", WithCodec(codec.YAML{}))
	require.NoError(t, v.Save(sample()))

	loaded, err := LoadAs[testData](v)
	require.NoError(t, err)
	assert.Equal(t, sample(), loaded)

	// A JSON handle decrypts fine but cannot decode YAML plaintext.
	_, err = LoadAs[testData](vaultAt(t, dir, "pwd"))
	assert.ErrorIs(t, err, ErrDeserialization)
}

func TestOpenBytes_DoesNotWipeCallerPassword(t *testing.T) {
	dir := t.TempDir()
	password := []byte("secret")

	v := OpenBytes(filepath.Join(dir, "vault.svlt"), password, WithParams(testMemory, testTime, testParallelism))
	defer v.Close()
	assert.Equal(t, []byte("secret"), password)

	require.NoError(t, v.Save(sample()))
	loaded, err := LoadAs[testData](vaultAt(t, dir, "secret"))
	require.NoError(t, err)
	assert.Equal(t, sample(), loaded)
}

func TestWrongPassword(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, vaultAt(t, dir, "correct").Save(sample()))

	var loaded testData
	err := vaultAt(t, dir, "wrong").Load(&loaded)
	assert.True(t, errors.Is(err, ErrDecryptionFailed), "expected ErrDecryptionFailed, got: %v", err)
	assert.Equal(t, testData{}, loaded, "no value may be returned")
}

func TestEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.svlt")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	_, err := LoadAs[testData](vaultAt(t, dir, "pwd"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.svlt")
	garbage := make([]byte, format.HeaderSize+16)
	for i := range garbage {
		garbage[i] = 0xFF
	}
	require.NoError(t, os.WriteFile(path, garbage, 0600))

	_, err := LoadAs[testData](vaultAt(t, dir, "pwd"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTruncatedCiphertext(t *testing.T) {
	dir := t.TempDir()
	v := vaultAt(t, dir, "pwd")
	require.NoError(t, v.Save(sample()))

	raw, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(v.Path(), raw[:format.HeaderSize], 0600))

	_, err = LoadAs[testData](v)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestCorruptedBytes(t *testing.T) {
	tests := []struct {
		name   string
		offset int
	}{
		{"salt", 5},
		{"nonce", 49},
		{"ciphertext", format.HeaderSize},
		{"tag", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := vaultAt(t, t.TempDir(), "pwd")
			require.NoError(t, v.Save(sample()))

			raw, err := os.ReadFile(v.Path())
			require.NoError(t, err)
			off := tt.offset
			if off < 0 {
				off = len(raw) - 1
			}
			raw[off] ^= 0x01
			require.NoError(t, os.WriteFile(v.Path(), raw, 0600))

			_, err = LoadAs[testData](v)
			assert.Equal(t, ErrDecryptionFailed, err, "failures must be indistinguishable")
		})
	}
}

func TestUnsupportedVersion(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")
	require.NoError(t, v.Save(sample()))

	raw, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	raw[4] = 99
	require.NoError(t, os.WriteFile(v.Path(), raw, 0600))

	_, err = LoadAs[testData](v)
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	var uv *UnsupportedVersionError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, uint8(99), uv.Version)
}

func TestFreshNonceOnEverySave(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")
	data := sample()

	require.NoError(t, v.Save(data))
	first, err := os.ReadFile(v.Path())
	require.NoError(t, err)

	require.NoError(t, v.Save(data))
	second, err := os.ReadFile(v.Path())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, first[5:37], second[5:37], "salt must differ")
	assert.NotEqual(t, first[49:61], second[49:61], "nonce must differ")
}

func TestExists(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")

	assert.False(t, v.Exists())
	require.NoError(t, v.Save(sample()))
	assert.True(t, v.Exists())
}

func TestExists_NotRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.svlt")
	require.NoError(t, os.Mkdir(path, 0o700))

	v := Open(path, "pwd")
	defer v.Close()
	assert.False(t, v.Exists(), "a directory is not a vault")

	_, err := LoadAs[testData](v)
	assert.ErrorIs(t, err, ErrIO)
}

func TestSaveBytes_StoresDocumentVerbatim(t *testing.T) {
	dir := t.TempDir()
	v := vaultAt(t, dir, "pwd")

	doc := []byte(`{"id": 12345678901234567891, "port": 9007199254740993}`)
	require.NoError(t, v.SaveBytes(doc))
	assert.Equal(t, `{"id": 12345678901234567891, "port": 9007199254740993}`, string(doc), "caller bytes untouched")

	var raw json.RawMessage
	require.NoError(t, v.Load(&raw))
	assert.Equal(t, string(doc), string(raw))

	var typed struct {
		Port uint64 `json:"port"`
	}
	require.NoError(t, v.Load(&typed))
	assert.Equal(t, uint64(9007199254740993), typed.Port)
}

func TestSaveBytes_Closed(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")
	require.NoError(t, v.Close())
	assert.ErrorIs(t, v.SaveBytes([]byte(`{}`)), ErrClosed)
	assert.False(t, v.Exists())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadAs[testData](vaultAt(t, t.TempDir(), "pwd"))
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "vault.svlt")
	v := Open(path, "pwd", WithParams(testMemory, testTime, testParallelism))
	defer v.Close()

	require.NoError(t, v.Save(sample()))
	assert.True(t, v.Exists())
}

func TestLoadDoesNotModifyFile(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")
	require.NoError(t, v.Save(sample()))

	before, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	infoBefore, err := os.Stat(v.Path())
	require.NoError(t, err)

	_, err = LoadAs[testData](v)
	require.NoError(t, err)

	after, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	infoAfter, err := os.Stat(v.Path())
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, infoBefore.ModTime(), infoAfter.ModTime())
}

func TestLoadUsesParamsFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Open(filepath.Join(dir, "vault.svlt"), "pwd", WithParams(16, 2, 1)).Save(sample()))

	// The reader's configured params differ; they must not matter.
	reader := vaultAt(t, dir, "pwd")
	reader.SetParams(Params{MemoryCost: 32, TimeCost: 1, Parallelism: 2})

	loaded, err := LoadAs[testData](reader)
	require.NoError(t, err)
	assert.Equal(t, sample(), loaded)

	info, err := Inspect(reader.Path())
	require.NoError(t, err)
	assert.Equal(t, Params{MemoryCost: 16, TimeCost: 2, Parallelism: 1}, info.Params)
}

func TestSaveInvalidParams(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")
	v.SetParams(Params{MemoryCost: 8, TimeCost: 0, Parallelism: 1})

	err := v.Save(sample())
	assert.ErrorIs(t, err, ErrKDF)
	assert.False(t, v.Exists(), "nothing may be written when derivation fails")
}

func TestLoadForgedParams(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")
	require.NoError(t, v.Save(sample()))

	raw, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	// time cost = 0
	raw[41], raw[42], raw[43], raw[44] = 0, 0, 0, 0
	require.NoError(t, os.WriteFile(v.Path(), raw, 0600))

	_, err = LoadAs[testData](v)
	assert.ErrorIs(t, err, ErrKDF)
}

func TestSaveSerializationError(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")

	err := v.Save(map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, ErrSerialization)
	assert.False(t, v.Exists())
}

func TestSaveFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	v := vaultAt(t, dir, "pwd")
	require.NoError(t, v.Save(sample()))
	before, err := os.ReadFile(v.Path())
	require.NoError(t, err)

	require.Error(t, v.Save(map[string]any{"ch": make(chan int)}))

	after, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestClosed(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")
	require.NoError(t, v.Save(sample()))
	require.NoError(t, v.Close())

	assert.ErrorIs(t, v.Save(sample()), ErrClosed)
	_, err := LoadAs[testData](v)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, v.Verify(), ErrClosed)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, vaultAt(t, dir, "pwd").Save(sample()))

	assert.NoError(t, vaultAt(t, dir, "pwd").Verify())
	assert.ErrorIs(t, vaultAt(t, dir, "nope").Verify(), ErrDecryptionFailed)
}

func TestInspect(t *testing.T) {
	v := vaultAt(t, t.TempDir(), "pwd")
	require.NoError(t, v.Save("0123456789"))

	info, err := Inspect(v.Path())
	require.NoError(t, err)
	assert.Equal(t, uint8(1), info.Version)
	assert.Equal(t, Params{MemoryCost: testMemory, TimeCost: testTime, Parallelism: testParallelism}, info.Params)
	assert.Equal(t, len(`"0123456789"`), info.PlaintextSize())
	assert.Equal(t, int64(format.HeaderSize+info.CiphertextSize), info.Size)

	_, err = Inspect(filepath.Join(t.TempDir(), "missing.svlt"))
	assert.ErrorIs(t, err, ErrIO)
}

func TestOpenExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	v := Open("~/vault.svlt", "pwd")
	defer v.Close()
	assert.Equal(t, filepath.Join(home, "vault.svlt"), v.Path())
}

func TestDefaultParams(t *testing.T) {
	v := Open("vault.svlt", "pwd")
	defer v.Close()
	assert.Equal(t, Params{MemoryCost: 65536, TimeCost: 3, Parallelism: 1}, v.Params())
}

func TestLoggerNeverSeesSecrets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	v := vaultAt(t, t.TempDir(), "hunter2", WithLogger(zap.New(core)))

	require.NoError(t, v.Save(map[string]string{"token": "s3cr3t-value"}))
	var out map[string]string
	require.NoError(t, v.Load(&out))

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, "s3cr3t-value")
		for _, field := range entry.Context {
			assert.NotContains(t, field.String, "s3cr3t-value")
			assert.NotContains(t, field.String, "hunter2")
		}
	}
}

// Concrete scenario: {name: "x", value: 1}, password "pw", params (8, 1, 1).
func TestScenario(t *testing.T) {
	type record struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	dir := t.TempDir()
	v := vaultAt(t, dir, "pw")
	want := record{Name: "x", Value: 1}

	require.NoError(t, v.Save(want))

	got, err := LoadAs[record](v)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = LoadAs[record](vaultAt(t, dir, "wrong"))
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	raw, err := os.ReadFile(v.Path())
	require.NoError(t, err)
	raw[4] = 99
	require.NoError(t, os.WriteFile(v.Path(), raw, 0600))

	_, err = LoadAs[record](v)
	var uv *UnsupportedVersionError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, uint8(99), uv.Version)
}
