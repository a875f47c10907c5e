package config

// Binding maps external setting names to a profile field. The first name is
// canonical; later names are legacy aliases.
type Binding struct {
	Names []string
	Dst   *string
}

// Bindings lists every setting that can come from the environment or a
// secret store, pointing into p.
func (p *Profile) Bindings() []Binding {
	return []Binding{
		{[]string{"TWILIO_ACCOUNT_ID", "TWILIO_ACCOUNT_SID"}, &p.Twilio.AccountSID},
		{[]string{"TWILIO_AUTH_TOKEN"}, &p.Twilio.AuthToken},
		{[]string{"TWILIO_PHONE", "TWILIO_PHONE_NUMBER"}, &p.Twilio.Phone},
		{[]string{"TWILIO_API_KEY"}, &p.Twilio.APIKey},
		{[]string{"TWILIO_API_SECRET"}, &p.Twilio.APISecret},
		{[]string{"TWILIO_APP_SID"}, &p.Twilio.AppSID},
		{[]string{"TWILIO_BASE_URL"}, &p.Twilio.BaseURL},
		{[]string{"AIRTABLE_TOKEN"}, &p.Airtable.Token},
		{[]string{"AIRTABLE_BASE_ID"}, &p.Airtable.BaseID},
		{[]string{"AIRTABLE_TABLE_ID"}, &p.Airtable.TableID},
		{[]string{"AIRTABLE_BASE_URL"}, &p.Airtable.BaseURL},
		{[]string{"SMSDASH_ADDR"}, &p.Server.Addr},
		{[]string{"SMSDASH_CORS_ORIGIN"}, &p.Server.CORSOrigin},
		{[]string{"SMSDASH_STATIC_DIR"}, &p.Server.StaticDir},
		{[]string{"SMSDASH_API_TOKEN"}, &p.Server.APIToken},
	}
}

// ApplyEnv overlays non-empty environment values onto p. PORT is honoured
// when SMSDASH_ADDR is not set.
func ApplyEnv(p *Profile, getenv func(string) string) {
	for _, b := range p.Bindings() {
		for _, name := range b.Names {
			if v := getenv(name); v != "" {
				*b.Dst = v
				break
			}
		}
	}
	if getenv("SMSDASH_ADDR") == "" {
		if port := getenv("PORT"); port != "" {
			p.Server.Addr = ":" + port
		}
	}
}
