// Package protocol defines the messages exchanged between the flourish
// client and server and the length-prefixed frame codec that carries them.
package protocol

// MessageType selects the handler for a request. A response echoes the
// type of the request it answers.
type MessageType string

const (
	Login               MessageType = "LOGIN"
	Register            MessageType = "REGISTER"
	DeleteAccount       MessageType = "DELETE_ACCOUNT"
	Search              MessageType = "SEARCH"
	GetMorePlantInfo    MessageType = "GET_MORE_PLANT_INFO"
	GetLibrary          MessageType = "GET_LIBRARY"
	SavePlant           MessageType = "SAVE_PLANT"
	DeletePlant         MessageType = "DELETE_PLANT"
	ChangeNickname      MessageType = "CHANGE_NICKNAME"
	ChangeLastWatered   MessageType = "CHANGE_LAST_WATERED"
	ChangeAllToWatered  MessageType = "CHANGE_ALL_TO_WATERED"
	ChangePlantPicture  MessageType = "CHANGE_PLANT_PICTURE"
	ChangeFunFacts      MessageType = "CHANGE_FUN_FACTS"
	ChangeNotifications MessageType = "CHANGE_NOTIFICATIONS"
	ForgotPassword      MessageType = "FORGOT_PASSWORD"
	ResetPassword       MessageType = "RESET_PASSWORD"
)

var allTypes = [...]MessageType{
	Login, Register, DeleteAccount, Search, GetMorePlantInfo, GetLibrary,
	SavePlant, DeletePlant, ChangeNickname, ChangeLastWatered,
	ChangeAllToWatered, ChangePlantPicture, ChangeFunFacts,
	ChangeNotifications, ForgotPassword, ResetPassword,
}

// AllTypes returns every defined message type. The slice is a copy.
func AllTypes() []MessageType {
	out := make([]MessageType, len(allTypes))
	copy(out, allTypes[:])
	return out
}

// Valid reports whether t is one of the defined message types.
func (t MessageType) Valid() bool {
	for _, v := range allTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ErrorCode classifies a failed response.
type ErrorCode string

const (
	CodeUnknownMessageType ErrorCode = "unknown_message_type"
	CodeBadRequest         ErrorCode = "bad_request"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeConflict           ErrorCode = "conflict"
	CodeNotFound           ErrorCode = "not_found"
	CodeInvalidToken       ErrorCode = "invalid_token"
	CodeInternal           ErrorCode = "internal"
)

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"
