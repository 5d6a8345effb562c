package portal

// Auth backend
const (
	registerMutation = `
  mutation Register($phone: String!) {
    registerWithoutPasswordV2(credentials: {phone: $phone}) {
      request_id
      status
    }
  }`

	verifyOTPMutation = `
  mutation VerifyOTP($phone1: String!, $otp1: String!) {
    verifyOTPV2(request: {otp: $otp1, phone: $phone1}) {
      auth_token
      refresh_token
      id
      status
      deviceInfoSaved
    }
  }`
)

// Portal API
const (
	refreshTokenMutation = `
  mutation RefreshToken($refresh_token: String!, $user_id: uuid!) {
    refreshToken(request: {refresh_token: $refresh_token, user_id: $user_id}) {
      auth_token
      refresh_token
      status
      id
    }
  }`

	logoutMutation = `
  mutation Logout($refreshToken: String!) {
    logout(request: {refresh_token: $refreshToken}) {
      success
      message
    }
  }`

	getClientQuery = `
  query GetAPIToken($user_id: uuid!) {
    whatsub_b2b_client(where: {user_id: {_eq: $user_id}}) {
      id
    }
  }`

	newClientMutation = `
  mutation GenerateAPIToken($user_id: uuid!) {
    newB2BClient(request: {user_id: $user_id}) {
      affected_rows
      clientId
      clientSecret
    }
  }`

	getWhitelistQuery = `
  query GetWhitelistedIPs($user_id: uuid!) {
    whatsub_b2b_client(where: {user_id: {_eq: $user_id}}) {
      ips
      created_at
      updated_at
    }
  }`

	updateWhitelistMutation = `
  mutation UpdateWhitelistedIPs($user_id: uuid!, $ips: [String!]!) {
    update_whatsub_b2b_client(
      where: { user_id: { _eq: $user_id } },
      _set: { ips: $ips }
    ) {
      affected_rows
    }
  }`

	getWebhookQuery = `
  query GetWebhookConfig($user_id: uuid!) {
    whatsub_b2b_client(where: {user_id: {_eq: $user_id}}) {
      webhook
      webhook_active
    }
  }`

	updateWebhookMutation = `
  mutation UpdateWebhookConfig($user_id: uuid!, $webhook: String!, $webhook_active: Boolean!) {
    update_whatsub_b2b_client(
      where: { user_id: { _eq: $user_id } },
      _set: { webhook: $webhook, webhook_active: $webhook_active }
    ) {
      affected_rows
    }
  }`

	docByPathQuery = `
  query DocumentationByPath($path: String = "") {
    karlo_documentation(where: {path: {_eq: $path}}) {
      created_at
      docs
      path
      name
      image_url
      updated_at
      platform
    }
  }`

	docListQuery = `
  query DocumentationList($pattern: String!) {
    karlo_documentation(where: { allowed_urls: { _ilike: $pattern } }) {
      path
      id
      name
      image_url
      created_at
      updated_at
      allowed_urls
      platform
    }
  }`
)
