package config

type Sheets struct {
	URL            string   `env:"URL,expand"`
	Account        string   `env:"ACCOUNT"`
	ClientKey      string   `env:"CLIENT_KEY"`
	ClientSecret   string   `env:"CLIENT_SECRET"`
	RefreshToken   string   `env:"REFRESH_TOKEN"`
	CallbackURL    string   `env:"CALLBACK_URL" envDefault:"http://localhost/oauth2/callback"`
	Scopes         []string `env:"SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/drive,https://www.googleapis.com/auth/spreadsheets"`
	FolderName     string   `env:"FOLDER_NAME" envDefault:"Open Data Kit Submissions"`
	DriveURL       string   `env:"DRIVE_URL" envDefault:"https://www.googleapis.com/drive/v3"`
	DriveUploadURL string   `env:"DRIVE_UPLOAD_URL" envDefault:"https://www.googleapis.com/upload/drive/v3"`
	SheetsURL      string   `env:"SHEETS_URL" envDefault:"https://sheets.googleapis.com/v4"`
}
