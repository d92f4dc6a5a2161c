package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	applog "github.com/charmaway/storefront/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

func testConfig() *config.Config {
	return &config.Config{Upload: config.UploadConfig{
		MaxSize:           1024,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "webp"},
	}}
}

// fileHeader builds a real multipart file header the way gin hands it to handlers
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Put(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func TestUploadProductImage_FirstImageIsMain(t *testing.T) {
	db, mock := setupMockDB(t)
	storage := newMemoryStorage()
	service := NewService(db, testConfig(), storage, applog.Discard())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "product_images" WHERE product_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "product_assets"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`INSERT INTO "product_images"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	result, err := service.UploadProductImage(context.Background(), 4, fileHeader(t, "Labial.PNG", pngBytes), 1)
	require.NoError(t, err)

	assert.Equal(t, uint(3), result.Asset.ID)
	assert.True(t, strings.HasPrefix(result.Asset.Key, "products/4/"))
	assert.True(t, strings.HasSuffix(result.Asset.Key, ".png"))
	assert.Equal(t, "image/png", result.Asset.MimeType)
	assert.Equal(t, "Labial.PNG", result.Asset.OriginalName)
	assert.True(t, result.Image.IsMain)
	assert.Equal(t, result.Asset.URL, result.Image.URL)

	assert.Equal(t, pngBytes, storage.objects[result.Asset.Key])
	assert.Equal(t, "image/png", storage.types[result.Asset.Key])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadProductImage_DatabaseFailureRemovesFile(t *testing.T) {
	db, mock := setupMockDB(t)
	storage := newMemoryStorage()
	service := NewService(db, testConfig(), storage, applog.Discard())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "product_images"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`INSERT INTO "product_assets"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := service.UploadProductImage(context.Background(), 4, fileHeader(t, "a.png", pngBytes), 1)
	require.Error(t, err)
	assert.Empty(t, storage.objects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadProductImage_Validation(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewService(db, testConfig(), newMemoryStorage(), applog.Discard())
	ctx := context.Background()

	_, err := service.UploadProductImage(ctx, 4, nil, 1)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = service.UploadProductImage(ctx, 4, fileHeader(t, "notes.txt", []byte("hola")), 1)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = service.UploadProductImage(ctx, 4, fileHeader(t, "big.png", bytes.Repeat([]byte{1}, 2048)), 1)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadProductImage_RejectsDisguisedFile(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewService(db, testConfig(), newMemoryStorage(), applog.Discard())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := service.UploadProductImage(context.Background(), 4, fileHeader(t, "photo.jpg", []byte("<html>not an image</html>")), 1)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadProductImage_UnknownProduct(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewService(db, testConfig(), newMemoryStorage(), applog.Discard())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := service.UploadProductImage(context.Background(), 99, fileHeader(t, "a.png", pngBytes), 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAsset_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewService(db, testConfig(), newMemoryStorage(), applog.Discard())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "product_assets" WHERE id = \$1`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	assert.ErrorIs(t, service.DeleteAsset(context.Background(), 8), apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAsset_PromotesNextImage(t *testing.T) {
	db, mock := setupMockDB(t)
	storage := newMemoryStorage()
	storage.objects["products/4/a.png"] = pngBytes
	service := NewService(db, testConfig(), storage, applog.Discard())

	url := "https://cdn.example.com/products/4/a.png"
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "product_assets" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "key", "url"}).AddRow(3, 4, "products/4/a.png", url))
	mock.ExpectQuery(`SELECT \* FROM "product_images" WHERE product_id = \$1 AND url = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "url", "is_main"}).AddRow(12, 4, url, true))
	mock.ExpectExec(`DELETE FROM "product_images" WHERE product_id = \$1 AND url = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "product_images" WHERE product_id = \$1 ORDER BY order_position ASC, id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "url", "is_main"}).AddRow(13, 4, "b.png", false))
	mock.ExpectExec(`UPDATE "product_images" SET "is_main"=\$1 WHERE "id" = \$2`).
		WithArgs(true, 13).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "product_assets" WHERE "product_assets"."id" = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, service.DeleteAsset(context.Background(), 3))
	assert.Empty(t, storage.objects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalStorage(t *testing.T) {
	root := t.TempDir()
	storage := NewLocalStorage(root, "")
	ctx := context.Background()

	url, err := storage.Put(ctx, "products/4/a.png", "image/png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/4/a.png", url)

	data, err := os.ReadFile(filepath.Join(root, "products", "4", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	// Keys cannot escape the root
	_, err = storage.Put(ctx, "../../etc/evil.png", "image/png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "etc", "evil.png"))
	assert.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, "products/4/a.png"))
	require.NoError(t, storage.Delete(ctx, "products/4/a.png"))
	_, err = os.Stat(filepath.Join(root, "products", "4", "a.png"))
	assert.True(t, os.IsNotExist(err))
}

type fakeObjects struct {
	put    *s3.PutObjectInput
	delete *s3.DeleteObjectInput
}

func (f *fakeObjects) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = params
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.delete = params
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	client := &fakeObjects{}
	storage := newS3Storage(client, config.StorageConfig{S3Bucket: "charmaway-media", S3Region: "eu-west-1"})

	url, err := storage.Put(context.Background(), "products/4/a.png", "image/png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "https://charmaway-media.s3.eu-west-1.amazonaws.com/products/4/a.png", url)
	assert.Equal(t, "charmaway-media", *client.put.Bucket)
	assert.Equal(t, "image/png", *client.put.ContentType)

	require.NoError(t, storage.Delete(context.Background(), "products/4/a.png"))
	assert.Equal(t, "products/4/a.png", *client.delete.Key)

	minio := newS3Storage(client, config.StorageConfig{S3Bucket: "media", S3Endpoint: "http://localhost:9000/"})
	assert.Equal(t, "http://localhost:9000/media", minio.baseURL)

	cdn := newS3Storage(client, config.StorageConfig{S3Bucket: "media", CDNBaseURL: "https://cdn.charmaway.es/"})
	assert.Equal(t, "https://cdn.charmaway.es", cdn.baseURL)
}

func TestFormattedSize(t *testing.T) {
	assert.Equal(t, "512 B", (&ProductAsset{Size: 512}).FormattedSize())
	assert.Equal(t, "1.5 KB", (&ProductAsset{Size: 1536}).FormattedSize())
}
