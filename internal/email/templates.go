package email

import "fmt"

func MagicLinkSubject() string {
	return "Your sign-in link"
}

func MagicLinkBody(magicLinkURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Your sign-in link</h2>
    <p>Click the button below to sign in. This link expires in 15 minutes
       and can be used only once.</p>
    <p><a href="%s" style="display:inline-block;padding:12px 24px;background:#f94f3d;color:#fff;text-decoration:none;border-radius:6px;">Sign In</a></p>
    <p style="color:#888;font-size:13px;">If you didn't request this link, you can safely ignore this email.</p>
  </body>
</html>`, magicLinkURL)
}

func RegistrationRequestSubject(name string) string {
	return fmt.Sprintf("New access request from %s", name)
}

func RegistrationRequestBody(userEmail, userName, baseURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>New access request</h2>
    <p><strong>%s</strong> (%s) requested access.</p>
    <p><a href="%s/admin/users/pending">Review pending requests</a></p>
  </body>
</html>`, userName, userEmail, baseURL)
}

func RegistrationApprovedSubject() string {
	return "Access approved"
}

func RegistrationApprovedBody(name, baseURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Welcome, %s</h2>
    <p>Your access request was approved. You can now sign in with your
       email address.</p>
    <p><a href="%s/login">Sign in</a></p>
  </body>
</html>`, name, baseURL)
}

func RegistrationRejectedSubject() string {
	return "Access request update"
}

func RegistrationRejectedBody(name string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <p>Hi %s,</p>
    <p>Your access request was not approved. Please contact support if you
       believe this is an error.</p>
  </body>
</html>`, name)
}
