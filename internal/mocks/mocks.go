package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"docuchat-service/internal/models"
	"docuchat-service/internal/ocr"
	"docuchat-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, username, email, passwordHash, role, answer1, answer2 string) (models.User, error) {
	args := m.Called(ctx, username, email, passwordHash, role, answer1, answer2)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ListOthers(ctx context.Context, userID int) ([]models.PublicUser, error) {
	args := m.Called(ctx, userID)
	var users []models.PublicUser
	if val := args.Get(0); val != nil {
		users = val.([]models.PublicUser)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) UsernamesByID(ctx context.Context, ids []int) (map[int]string, error) {
	args := m.Called(ctx, ids)
	var names map[int]string
	if val := args.Get(0); val != nil {
		names = val.(map[int]string)
	}
	return names, args.Error(1)
}

func (m *UserRepositoryMock) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *UserRepositoryMock) SetSecurityAnswers(ctx context.Context, userID int, answer1, answer2 string) error {
	args := m.Called(ctx, userID, answer1, answer2)
	return args.Error(0)
}

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) GetOrCreateRoom(ctx context.Context, userID int, otherID int) (models.Room, error) {
	args := m.Called(ctx, userID, otherID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) IsParticipant(ctx context.Context, roomID int, userID int) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListVisibleMessages(ctx context.Context, roomID int, viewerID int) ([]models.Message, error) {
	args := m.Called(ctx, roomID, viewerID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) EditMessage(ctx context.Context, messageID int, content string) (models.Message, error) {
	args := m.Called(ctx, messageID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) RetractMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) HideMessageForUser(ctx context.Context, messageID int, userID int) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

type DocumentRepositoryMock struct {
	mock.Mock
}

func (m *DocumentRepositoryMock) UpsertDocument(ctx context.Context, doc models.OCRDocument) (models.OCRDocument, error) {
	args := m.Called(ctx, doc)
	var stored models.OCRDocument
	if val := args.Get(0); val != nil {
		stored = val.(models.OCRDocument)
	}
	return stored, args.Error(1)
}

func (m *DocumentRepositoryMock) ListDocuments(ctx context.Context) ([]models.OCRDocument, error) {
	args := m.Called(ctx)
	var docs []models.OCRDocument
	if val := args.Get(0); val != nil {
		docs = val.([]models.OCRDocument)
	}
	return docs, args.Error(1)
}

func (m *DocumentRepositoryMock) GetByFileName(ctx context.Context, fileName string) (models.OCRDocument, error) {
	args := m.Called(ctx, fileName)
	var doc models.OCRDocument
	if val := args.Get(0); val != nil {
		doc = val.(models.OCRDocument)
	}
	return doc, args.Error(1)
}

func (m *DocumentRepositoryMock) DeleteByFileName(ctx context.Context, fileName string) error {
	args := m.Called(ctx, fileName)
	return args.Error(0)
}

type OCRClientMock struct {
	mock.Mock
}

func (m *OCRClientMock) ExtractText(ctx context.Context, fileName string, file io.Reader) (string, error) {
	args := m.Called(ctx, fileName, file)
	return args.String(0), args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.DocumentRepository = (*DocumentRepositoryMock)(nil)
var _ ocr.Client = (*OCRClientMock)(nil)
