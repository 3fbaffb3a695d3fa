package password

import "golang.org/x/crypto/bcrypt"

// cost 12 over the library default; these hashes guard accounts that sign off
// regulated documents, and login is rate limited anyway.
const hashCost = 12

func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
