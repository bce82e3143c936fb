package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pickuphub/pickuphub/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	if err != nil {
		return err
	}

	return nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// mapServiceErrorToHTTP translates service layer errors into HTTP responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrBracketMatchNotFound):
		notFoundResponse(w, r)

	case errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrMatchFull),
		errors.Is(err, services.ErrTournamentFull),
		errors.Is(err, services.ErrMatchAlreadyCompleted),
		errors.Is(err, services.ErrMatchNotCancelled),
		errors.Is(err, services.ErrBracketMatchNotPending),
		errors.Is(err, services.ErrBracketWinnerNotSeated),
		errors.Is(err, services.ErrConcurrentUpdate):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrMatchNotUpcoming),
		errors.Is(err, services.ErrMatchNotScorable),
		errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrTournamentNotUpcoming),
		errors.Is(err, services.ErrTournamentNotOngoing),
		errors.Is(err, services.ErrTournamentCompleted),
		errors.Is(err, services.ErrTournamentOngoing),
		errors.Is(err, services.ErrNotEnoughParticipants):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrCreatorOnly),
		errors.Is(err, services.ErrOrganizerOnly),
		errors.Is(err, services.ErrCreatorCannotLeave),
		errors.Is(err, services.ErrOrganizerCannotLeave):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrScheduleInvalid),
		errors.Is(err, services.ErrScheduleInPast),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrWinnerNotParticipant),
		errors.Is(err, services.ErrSportRequired),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidMatchType),
		errors.Is(err, services.ErrInvalidCapacity),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrInvalidRules),
		errors.Is(err, services.ErrUnsupportedImageType):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrBannerStorageUnavailable):
		errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
