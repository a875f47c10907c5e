package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/matheus3301/smsdash/internal/config"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves parameters from a map and records the names requested.
type fakeAPI struct {
	values map[string]string
	err    error
	asked  []string
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.asked = append(f.asked, *in.Name)
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[*in.Name]
	if !ok {
		return nil, &types.ParameterNotFound{Message: in.Name}
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: &v}}, nil
}

func TestGetParameter_HappyPath(t *testing.T) {
	client, err := New(&fakeAPI{values: map[string]string{"/smsdash/TWILIO_AUTH_TOKEN": "tok"}})
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), "/smsdash/TWILIO_AUTH_TOKEN")
	require.NoError(t, err)
	require.Equal(t, "tok", v)
}

func TestGetParameter_RequestsDecryption(t *testing.T) {
	var got *ssm.GetParameterInput
	api := apiFunc(func(in *ssm.GetParameterInput) (*ssm.GetParameterOutput, error) {
		got = in
		v := "x"
		return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: &v}}, nil
	})
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), " p ")
	require.NoError(t, err)
	require.Equal(t, "p", *got.Name)
	require.True(t, *got.WithDecryption)
}

func TestGetParameter_NotFound(t *testing.T) {
	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "/missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetParameter_MissingValue(t *testing.T) {
	api := apiFunc(func(in *ssm.GetParameterInput) (*ssm.GetParameterOutput, error) {
		return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name}}, nil
	})
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "missing value")
}

func TestGetParameter_ApiError(t *testing.T) {
	client, err := New(&fakeAPI{err: errors.New("boom")})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestGetParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "not initialized")
}

func TestGetParameter_EmptyName(t *testing.T) {
	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "  ")
	require.ErrorContains(t, err, "required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "must not be nil")
}

func TestApply_FillsBindings(t *testing.T) {
	api := &fakeAPI{values: map[string]string{
		"/smsdash/prod/TWILIO_ACCOUNT_SID": "AC1",
		"/smsdash/prod/TWILIO_AUTH_TOKEN":  "tok",
		"/smsdash/prod/AIRTABLE_TOKEN":     "pat",
	}}
	client, err := New(api)
	require.NoError(t, err)

	p := config.Profile{}
	p.Airtable.BaseID = "appFROMFILE"
	require.NoError(t, Apply(context.Background(), client, "/smsdash/prod/", p.Bindings()))

	require.Equal(t, "AC1", p.Twilio.AccountSID, "legacy alias is used when canonical name is absent")
	require.Equal(t, "tok", p.Twilio.AuthToken)
	require.Equal(t, "pat", p.Airtable.Token)
	require.Equal(t, "appFROMFILE", p.Airtable.BaseID, "missing parameter keeps existing value")
	require.Contains(t, api.asked, "/smsdash/prod/TWILIO_ACCOUNT_ID")
}

func TestApply_CanonicalNameWins(t *testing.T) {
	client, err := New(&fakeAPI{values: map[string]string{
		"/p/TWILIO_ACCOUNT_ID":  "canonical",
		"/p/TWILIO_ACCOUNT_SID": "alias",
	}})
	require.NoError(t, err)

	p := config.Profile{}
	require.NoError(t, Apply(context.Background(), client, "/p", p.Bindings()))
	require.Equal(t, "canonical", p.Twilio.AccountSID)
}

func TestApply_StopsOnError(t *testing.T) {
	client, err := New(&fakeAPI{err: errors.New("throttled")})
	require.NoError(t, err)

	p := config.Profile{}
	err = Apply(context.Background(), client, "/p", p.Bindings())
	require.ErrorContains(t, err, "throttled")
}

type apiFunc func(in *ssm.GetParameterInput) (*ssm.GetParameterOutput, error)

func (f apiFunc) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return f(in)
}
