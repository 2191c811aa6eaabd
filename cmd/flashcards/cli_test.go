package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points the CLI at a fresh sqlite database and export directory
func setupEnv(t *testing.T) (exportDir string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping sqlite-backed CLI test in short mode")
	}
	dir := t.TempDir()
	exportDir = filepath.Join(dir, "exports")

	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "flashcards.db"))
	t.Setenv("STORAGE_KEY", "mathFlashcards")
	t.Setenv("EXPORT_DIR", exportDir)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DEBUG", "false")
	t.Setenv("SES_FROM_EMAIL", "")
	t.Setenv("NOTIFY_EMAIL", "")
	return exportDir
}

// runCLI executes one CLI invocation with input on stdin and returns its output
func runCLI(t *testing.T, input string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	err := run(args, strings.NewReader(input), &out)
	require.NoError(t, err, "flashcards %s\n%s", strings.Join(args, " "), out.String())
	return out.String()
}

var addedID = regexp.MustCompile(`\(id (\d+)\)`)

func addCard(t *testing.T, category, question, answer string) string {
	t.Helper()
	out := runCLI(t, "", "add", "-c", category, "-d", "easy", "-q", question, "-a", answer)
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2, "no id in %q", out)
	return m[1]
}

func TestAddAndList(t *testing.T) {
	setupEnv(t)

	addCard(t, "algebra", "2+2", "4")
	addCard(t, "geometry", "sides of a triangle", "3")

	out := runCLI(t, "", "list")
	assert.Contains(t, out, "2+2")
	assert.Contains(t, out, "sides of a triangle")

	out = runCLI(t, "", "list", "--category", "geometry")
	assert.NotContains(t, out, "2+2")

	out = runCLI(t, "", "categories")
	assert.Equal(t, "algebra\ngeometry\n", out)
}

func TestAddPromptsForMissingText(t *testing.T) {
	setupEnv(t)

	out := runCLI(t, "3*3\n9\n", "add", "-c", "arithmetic")
	assert.Contains(t, out, "Flashcard added successfully!")

	out = runCLI(t, "", "list")
	assert.Contains(t, out, "3*3")
}

func TestAddRejectsBlankAnswer(t *testing.T) {
	setupEnv(t)

	out := runCLI(t, "", "add", "-q", "2+2", "-a", "   ")
	assert.Contains(t, out, "Please fill in both question and answer")

	out = runCLI(t, "", "list")
	assert.Contains(t, out, "No flashcards yet")
}

func TestEdit(t *testing.T) {
	setupEnv(t)
	id := addCard(t, "algebra", "2+2", "5")

	// keep the question, replace the answer
	out := runCLI(t, "\n4\n", "edit", id)
	assert.Contains(t, out, "Flashcard updated.")

	out = runCLI(t, "", "export", "--stdout")
	assert.Contains(t, out, `"question": "2+2"`)
	assert.Contains(t, out, `"answer": "4"`)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	setupEnv(t)
	id := addCard(t, "algebra", "2+2", "4")

	runCLI(t, "n\n", "delete", id)
	assert.Contains(t, runCLI(t, "", "list"), "2+2")

	out := runCLI(t, "y\n", "delete", id)
	assert.Contains(t, out, "Flashcard deleted.")
	assert.Contains(t, runCLI(t, "", "list"), "No flashcards yet")
}

func TestClearWithYesFlag(t *testing.T) {
	setupEnv(t)
	addCard(t, "algebra", "2+2", "4")

	out := runCLI(t, "", "clear", "--yes")
	assert.Contains(t, out, "All flashcards deleted.")

	out = runCLI(t, "", "export")
	assert.Contains(t, out, "No flashcards to export")
}

func TestExportImportRoundTrip(t *testing.T) {
	exportDir := setupEnv(t)
	addCard(t, "algebra", "2+2", "4")
	addCard(t, "geometry", "angles in a triangle", "180")

	out := runCLI(t, "", "export")
	assert.Contains(t, out, "Exported 2 flashcards")

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^math-flashcards-\d{4}-\d{2}-\d{2}\.json$`, entries[0].Name())
	path := filepath.Join(exportDir, entries[0].Name())

	runCLI(t, "", "clear", "-y")

	out = runCLI(t, "y\n", "import", path)
	assert.Contains(t, out, "Import 2 flashcards? This will add to existing cards.")
	assert.Contains(t, out, "Flashcards imported successfully!")

	out = runCLI(t, "", "list")
	assert.Contains(t, out, "2+2")
	assert.Contains(t, out, "angles in a triangle")
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	setupEnv(t)
	addCard(t, "algebra", "2+2", "4")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not a list}`), 0644))

	out := runCLI(t, "", "import", path)
	assert.Contains(t, out, "Error reading file")

	out = runCLI(t, "", "export", "--stdout")
	assert.Equal(t, 1, strings.Count(out, `"id"`))
}

func TestImportUnparseableFile(t *testing.T) {
	setupEnv(t)
	addCard(t, "algebra", "2+2", "4")

	path := filepath.Join(t.TempDir(), "truncated.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,`), 0644))

	out := runCLI(t, "", "import", path)
	assert.Contains(t, out, "Error reading file")
	assert.NotContains(t, out, "Invalid file format")
}

func TestImportNonListObject(t *testing.T) {
	setupEnv(t)

	path := filepath.Join(t.TempDir(), "object.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":1,"question":"q"}`), 0644))

	out := runCLI(t, "", "import", path)
	assert.Contains(t, out, "Invalid file format")
}

func TestAddKeepsComparisonOperators(t *testing.T) {
	setupEnv(t)
	addCard(t, "algebra", "Is 3 < 5 & 7 > 2?", "yes")

	out := runCLI(t, "q\n", "study")
	assert.Contains(t, out, "Q: Is 3 < 5 & 7 > 2?")
}

func TestStudySession(t *testing.T) {
	setupEnv(t)
	addCard(t, "algebra", "2+2", "4")

	out := runCLI(t, "f\nn\n", "study")
	assert.Contains(t, out, "Card 1 of 1 (algebra, easy)")
	assert.Contains(t, out, "Q: 2+2")
	assert.Contains(t, out, "A: 4")
	assert.Contains(t, out, "Session complete! Great job studying!")

	out = runCLI(t, "", "export", "--stdout")
	assert.Contains(t, out, `"timesStudied": 1`)
}

func TestStudyPickCategory(t *testing.T) {
	setupEnv(t)
	addCard(t, "algebra", "2+2", "4")
	addCard(t, "geometry", "sides of a square", "4")

	out := runCLI(t, "2\nq\n", "study", "--pick")
	assert.Contains(t, out, "Choose category:")
	assert.Contains(t, out, "Card 1 of 1 (geometry, easy)")
	assert.NotContains(t, out, "Session complete!")
}

func TestStudyRefusals(t *testing.T) {
	setupEnv(t)

	out := runCLI(t, "", "study")
	assert.Contains(t, out, "Add some flashcards first!")

	addCard(t, "algebra", "2+2", "4")
	out = runCLI(t, "", "study", "--category", "calculus")
	assert.Contains(t, out, "No cards found for this category")
}

func TestUnreadableStorageStartsEmpty(t *testing.T) {
	setupEnv(t)
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "corrupt.db"))

	// seed a malformed record through a normal run's storage
	a := newApp(strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, a.open(context.Background()))
	_, err := a.db.Exec(a.db.GetDialect().UpsertKVQuery(), "mathFlashcards", "{oops")
	require.NoError(t, err)
	a.close()

	out := runCLI(t, "", "list")
	assert.Contains(t, out, "Saved flashcards could not be read")
	assert.Contains(t, out, "No flashcards yet")
}
